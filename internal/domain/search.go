package domain

import "strings"

// MaxResults is the fixed result count requested from the ranking service.
const MaxResults = 30

// SearchRequest is the body posted to the ranking webhook.
type SearchRequest struct {
	Topics      string      `json:"topics"`
	RankingMode RankingMode `json:"ranking_mode"`
	MaxResults  int         `json:"max_results"`
}

// NewSearchRequest trims the topic and returns ErrEmptyQuery when nothing is left.
func NewSearchRequest(topic string, mode RankingMode) (SearchRequest, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return SearchRequest{}, ErrEmptyQuery
	}
	if mode == "" {
		mode = DefaultRankingMode
	}
	return SearchRequest{
		Topics:      topic,
		RankingMode: mode,
		MaxResults:  MaxResults,
	}, nil
}
