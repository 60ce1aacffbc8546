package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/paperrank/app/internal/domain"
)

// Searcher posts a search to the ranking service and returns the raw body of
// a successful reply.
type Searcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]byte, error)
}

// ResultStore is the per-session holder a search writes into.
type ResultStore interface {
	Set(domain.ResultSet)
	Begin() (done func(), ok bool)
}

// Loader is the loading indicator shown while a search runs.
type Loader interface {
	Start()
	Stop()
}

type nopLoader struct{}

func (nopLoader) Start() {}
func (nopLoader) Stop()  {}

type SearchUsecase struct {
	searcher Searcher
	log      logrus.FieldLogger
}

func NewSearchUsecase(searcher Searcher, log logrus.FieldLogger) *SearchUsecase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SearchUsecase{
		searcher: searcher,
		log:      log,
	}
}

// Submit runs one search for a session.
//
// A blank topic returns domain.ErrEmptyQuery without contacting the service.
// On success the normalized ResultSet replaces the store's contents; on any
// failure the store is left as it was. The loader, when given, is stopped on
// every path that started it.
func (u *SearchUsecase) Submit(ctx context.Context, store ResultStore, topic string, mode domain.RankingMode, loader Loader) (domain.ResultSet, error) {
	req, err := domain.NewSearchRequest(topic, mode)
	if err != nil {
		return nil, err
	}

	done, ok := store.Begin()
	if !ok {
		return nil, domain.ErrSearchInProgress
	}
	defer done()

	if loader == nil {
		loader = nopLoader{}
	}
	loader.Start()
	defer loader.Stop()

	log := u.log.WithFields(logrus.Fields{
		"mode":  req.RankingMode,
		"topic": req.Topics,
	})

	body, err := u.searcher.Search(ctx, req)
	if err != nil {
		log.WithError(err).WithField("kind", domain.ErrorKind(err)).Warn("search failed")
		return nil, err
	}

	rs, err := Normalize(body)
	if err != nil {
		log.WithError(err).WithField("kind", domain.ErrorKind(err)).Warn("search returned unusable body")
		return nil, err
	}

	store.Set(rs)
	log.WithField("results", len(rs)).Info("search completed")
	return rs, nil
}

// NoticeFor converts a Submit outcome into the message shown to the user.
func NoticeFor(rs domain.ResultSet, err error) domain.Notice {
	var (
		connErr *domain.ConnectionError
		svcErr  *domain.ServiceError
		badErr  *domain.MalformedResponseError
	)
	switch {
	case err == nil:
		return domain.Notice{Level: domain.NoticeSuccess, Message: fmt.Sprintf("Found %d papers.", len(rs))}
	case errors.Is(err, domain.ErrEmptyQuery):
		return domain.Notice{Level: domain.NoticeWarning, Message: "Please enter a topic."}
	case errors.Is(err, domain.ErrSearchInProgress):
		return domain.Notice{Level: domain.NoticeWarning, Message: "A search is already running. Please wait for it to finish."}
	case errors.As(err, &connErr):
		return domain.Notice{Level: domain.NoticeError, Message: "Could not connect to the ranking service. Make sure it is running."}
	case errors.As(err, &svcErr):
		return domain.Notice{Level: domain.NoticeError, Message: fmt.Sprintf("Server returned error: %d", svcErr.StatusCode)}
	case errors.As(err, &badErr):
		return domain.Notice{Level: domain.NoticeError, Message: "Invalid JSON returned by the ranking service."}
	}
	return domain.Notice{Level: domain.NoticeError, Message: "Unexpected Error. Please try after some time"}
}
