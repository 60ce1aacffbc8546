package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/paperrank/app/internal/domain"
	"github.com/paperrank/app/internal/export"
	"github.com/paperrank/app/internal/middleware"
	"github.com/paperrank/app/internal/session"
	"github.com/paperrank/app/internal/usecase"
)

type Handler struct {
	searchUsecase *usecase.SearchUsecase
	searchTimeout time.Duration
	log           logrus.FieldLogger
}

// NewHandler wires the page and API handlers. searchTimeout bounds each
// webhook call independently of the client connection.
func NewHandler(search *usecase.SearchUsecase, searchTimeout time.Duration, log logrus.FieldLogger) *Handler {
	return &Handler{
		searchUsecase: search,
		searchTimeout: searchTimeout,
		log:           log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *Handler) sessionStore(w http.ResponseWriter, r *http.Request) (*session.Store, bool) {
	store, ok := middleware.GetSession(r.Context())
	if !ok {
		http.Error(w, "Session required", http.StatusInternalServerError)
		return nil, false
	}
	return store, true
}

// search runs one submission detached from the client connection: once sent,
// a search finishes or times out on its own.
func (h *Handler) search(r *http.Request, store *session.Store, topic string, mode domain.RankingMode) (domain.ResultSet, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.searchTimeout)
	defer cancel()
	return h.searchUsecase.Submit(ctx, store, topic, mode, nil)
}

// Page handlers

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	topic, mode := store.LastQuery()
	data := newPageData(topic, mode, store.Get())
	data.Busy = store.Busy()
	if n, ok := store.TakeNotice(); ok {
		data.Notice = &n
	}

	var buf bytes.Buffer
	if err := renderPage(&buf, data); err != nil {
		h.log.WithError(err).Error("failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (h *Handler) SubmitSearch(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	topic := r.PostFormValue("topic")
	mode, err := domain.ParseRankingMode(r.PostFormValue("mode"))
	if err != nil {
		http.Error(w, "Unknown ranking style", http.StatusBadRequest)
		return
	}
	store.SetLastQuery(topic, mode)

	rs, err := h.search(r, store, topic, mode)
	store.SetNotice(usecase.NoticeFor(rs, err))

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	rs := store.Get()
	if len(rs) == 0 {
		http.Error(w, "No results to download", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rs); err != nil {
		h.log.WithError(err).Error("failed to export results")
		http.Error(w, "Failed to export results", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Write(buf.Bytes())
}

// API handlers

type searchRequest struct {
	Topics      string `json:"topics"`
	RankingMode string `json:"ranking_mode"`
}

type resultsResponse struct {
	Results domain.ResultSet `json:"results"`
	Count   int              `json:"count"`
	Notice  *domain.Notice   `json:"notice,omitempty"`
}

func (h *Handler) APISearch(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	mode, err := domain.ParseRankingMode(req.RankingMode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unknown ranking mode")
		return
	}
	store.SetLastQuery(req.Topics, mode)

	rs, err := h.search(r, store, req.Topics, mode)
	notice := usecase.NoticeFor(rs, err)
	if err != nil {
		writeJSON(w, statusFor(err), errorResponse{Error: notice.Message, Kind: domain.ErrorKind(err)})
		return
	}

	writeJSON(w, http.StatusOK, resultsResponse{Results: rs, Count: len(rs), Notice: &notice})
}

func (h *Handler) APIResults(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	rs := store.Get()
	writeJSON(w, http.StatusOK, resultsResponse{Results: rs, Count: len(rs)})
}

type rankingModeResponse struct {
	Name    domain.RankingMode `json:"name"`
	Help    string             `json:"help"`
	Default bool               `json:"default"`
}

func (h *Handler) APIRankingModes(w http.ResponseWriter, r *http.Request) {
	modes := make([]rankingModeResponse, 0, len(domain.RankingModes))
	for _, m := range domain.RankingModes {
		modes = append(modes, rankingModeResponse{Name: m, Help: m.Help(), Default: m == domain.DefaultRankingMode})
	}
	writeJSON(w, http.StatusOK, modes)
}

func statusFor(err error) int {
	var (
		connErr *domain.ConnectionError
		svcErr  *domain.ServiceError
		badErr  *domain.MalformedResponseError
	)
	switch {
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSearchInProgress):
		return http.StatusConflict
	case errors.As(err, &connErr):
		if isTimeout(err) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case errors.As(err, &svcErr), errors.As(err, &badErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
