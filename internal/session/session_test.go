package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperrank/app/internal/domain"
)

func sampleSet(titles ...string) domain.ResultSet {
	rs := domain.ResultSet{}
	for _, t := range titles {
		p := domain.NewPaperResult()
		p.Title = t
		rs = append(rs, p)
	}
	return rs
}

func TestStore_StartsEmpty(t *testing.T) {
	s := NewStore()
	rs := s.Get()
	assert.NotNil(t, rs)
	assert.Empty(t, rs)
}

func TestStore_SetReplacesAndCopies(t *testing.T) {
	s := NewStore()
	in := sampleSet("A", "B")
	s.Set(in)

	in[0].Title = "mutated"
	got := s.Get()
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)

	got[1].Title = "also mutated"
	assert.Equal(t, "B", s.Get()[1].Title)

	s.Set(sampleSet("C"))
	assert.Equal(t, []string{"C"}, titles(s.Get()))
}

func TestStore_ConcurrentReadsSeeWholeSets(t *testing.T) {
	s := NewStore()
	a := sampleSet("a1", "a2", "a3")
	b := sampleSet("b1", "b2")
	s.Set(a)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if (i+j)%2 == 0 {
					s.Set(a)
				} else {
					s.Set(b)
				}
			}
		}(i)
	}
	for j := 0; j < 500; j++ {
		got := titles(s.Get())
		if len(got) == 3 {
			assert.Equal(t, []string{"a1", "a2", "a3"}, got)
		} else {
			assert.Equal(t, []string{"b1", "b2"}, got)
		}
	}
	wg.Wait()
}

func TestStore_BeginRejectsOverlap(t *testing.T) {
	s := NewStore()
	done, ok := s.Begin()
	require.True(t, ok)
	assert.True(t, s.Busy())

	_, ok = s.Begin()
	assert.False(t, ok)

	done()
	done()
	assert.False(t, s.Busy())

	done2, ok := s.Begin()
	require.True(t, ok)
	done2()
}

func TestStore_TakeNoticeOnce(t *testing.T) {
	s := NewStore()
	_, ok := s.TakeNotice()
	assert.False(t, ok)

	s.SetNotice(domain.Notice{Level: domain.NoticeWarning, Message: "Please enter a topic."})
	n, ok := s.TakeNotice()
	require.True(t, ok)
	assert.Equal(t, "Please enter a topic.", n.Message)

	_, ok = s.TakeNotice()
	assert.False(t, ok)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := NewTokenCodec([]byte("secret"))
	require.NoError(t, err)

	id := uuid.New()
	tok, err := codec.Sign(id, time.Now())
	require.NoError(t, err)

	got, err := codec.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenCodec_RejectsOtherKey(t *testing.T) {
	a, err := NewTokenCodec([]byte("secret-a"))
	require.NoError(t, err)
	b, err := NewTokenCodec([]byte("secret-b"))
	require.NoError(t, err)

	tok, err := a.Sign(uuid.New(), time.Now())
	require.NoError(t, err)

	_, err = b.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenCodec_EmptySecret(t *testing.T) {
	_, err := NewTokenCodec(nil)
	assert.Error(t, err)
}

func newManager(t *testing.T, opts ...ManagerOption) *Manager {
	t.Helper()
	codec, err := NewTokenCodec([]byte("test-secret"))
	require.NoError(t, err)
	return NewManager(codec, opts...)
}

func TestManager_IssuesAndResumesSession(t *testing.T) {
	m := newManager(t)

	id, store, cookie, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotNil(t, cookie)
	assert.Equal(t, DefaultCookieName, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	store.Set(sampleSet("kept"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	id2, store2, cookie2, err := m.Load(req)
	require.NoError(t, err)
	assert.Nil(t, cookie2)
	assert.Equal(t, id, id2)
	assert.Same(t, store, store2)
	assert.Equal(t, []string{"kept"}, titles(store2.Get()))
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newManager(t)

	_, s1, _, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, s2, _, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	s1.Set(sampleSet("one"))
	assert.Empty(t, s2.Get())
	assert.Equal(t, 2, m.Len())
}

func TestManager_ForgedCookieGetsNewSession(t *testing.T) {
	m := newManager(t, WithCookieName("sid"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "forged"})
	_, store, cookie, err := m.Load(req)
	require.NoError(t, err)
	require.NotNil(t, cookie)
	assert.Equal(t, "sid", cookie.Name)
	assert.Empty(t, store.Get())
}

func TestManager_IdleSessionsEnd(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newManager(t, WithTTL(time.Hour), withClock(func() time.Time { return now }))

	_, idle, idleCookie, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	idle.Set(sampleSet("old"))

	_, running, _, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	done, ok := running.Begin()
	require.True(t, ok)
	defer done()

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(idleCookie)
	_, fresh, cookie, err := m.Load(req)
	require.NoError(t, err)
	assert.NotNil(t, cookie)
	assert.Empty(t, fresh.Get())
}

func titles(rs domain.ResultSet) []string {
	out := make([]string, 0, len(rs))
	for _, p := range rs {
		out = append(out, p.Title)
	}
	return out
}

func TestStore_LastQuery(t *testing.T) {
	s := NewStore()
	topic, mode := s.LastQuery()
	assert.Equal(t, "", topic)
	assert.Equal(t, domain.RankingBestOverall, mode)

	s.SetLastQuery("graph neural networks", domain.RankingMostRelevant)
	topic, mode = s.LastQuery()
	assert.Equal(t, "graph neural networks", topic)
	assert.Equal(t, domain.RankingMostRelevant, mode)
}

func TestManager_LookupDoesNotCreate(t *testing.T) {
	m := newManager(t)

	_, _, ok := m.Lookup(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())

	id, _, cookie, err := m.Load(httptest.NewRequest(http.MethodPost, "/search", nil))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	got, _, ok := m.Lookup(req)
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestManager_CapEvictsOldestIdle(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := newManager(t, WithMaxSessions(2), withClock(func() time.Time { return now }))

	_, _, oldCookie, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	now = now.Add(time.Minute)
	_, _, newerCookie, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	now = now.Add(time.Minute)

	_, _, _, err = m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(oldCookie)
	_, _, ok := m.Lookup(req)
	assert.False(t, ok, "oldest session is ended")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(newerCookie)
	_, _, ok = m.Lookup(req)
	assert.True(t, ok)
}

func TestManager_CapKeepsRunningSearches(t *testing.T) {
	m := newManager(t, WithMaxSessions(1))

	_, store, _, err := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	done, ok := store.Begin()
	require.True(t, ok)
	defer done()

	_, _, _, err = m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrTooManySessions)
	assert.Equal(t, 1, m.Len())
}
