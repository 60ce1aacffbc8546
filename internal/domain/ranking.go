package domain

import "fmt"

// RankingMode is forwarded to the ranking service verbatim; it is never
// interpreted locally.
type RankingMode string

const (
	RankingBestOverall    RankingMode = "Best Overall"
	RankingMostRelevant   RankingMode = "Most Relevant"
	RankingMostInnovative RankingMode = "Most Innovative"
	RankingHighestQuality RankingMode = "Highest Quality"
)

// DefaultRankingMode is preselected in the form.
const DefaultRankingMode = RankingBestOverall

// RankingModes lists the selectable modes in display order.
var RankingModes = []RankingMode{
	RankingBestOverall,
	RankingMostRelevant,
	RankingMostInnovative,
	RankingHighestQuality,
}

var rankingHelp = map[RankingMode]string{
	RankingBestOverall:    "A balanced mix of relevance, research quality, and innovation.",
	RankingMostRelevant:   "Papers most related to your topic.",
	RankingMostInnovative: "Novel ideas, unique approaches, new concepts.",
	RankingHighestQuality: "Strong evidence, citations, methodology.",
}

// Help returns the description shown under the selector.
func (m RankingMode) Help() string {
	return rankingHelp[m]
}

func (m RankingMode) Valid() bool {
	_, ok := rankingHelp[m]
	return ok
}

// ParseRankingMode maps user input to a RankingMode. An empty string selects
// the default.
func ParseRankingMode(s string) (RankingMode, error) {
	if s == "" {
		return DefaultRankingMode, nil
	}
	m := RankingMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown ranking mode %q", s)
	}
	return m, nil
}
