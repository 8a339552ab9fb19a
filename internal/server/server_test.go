package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rhymenet/internal/config"
	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/driver"
	"github.com/agenthands/rhymenet/internal/metrics"
)

func newFixtureServer(t *testing.T) (*Server, *driver.SQLStore) {
	t.Helper()
	ctx := context.Background()

	store, err := driver.OpenSQLite(ctx, ":memory:", 5*time.Second, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(ctx) })

	fixture, err := driver.LoadFixtureFile("../driver/testdata/songs.json")
	require.NoError(t, err)
	_, _, err = fixture.Apply(ctx, store)
	require.NoError(t, err)

	return newServer(store), store
}

func newServer(store core.Backend) *Server {
	cfg := config.Default().Server
	cfg.Mode = gin.TestMode
	return newServerWith(store, cfg)
}

func newServerWith(store core.Backend, cfg config.ServerConfig) *Server {
	collector := metrics.NewCollector("rhymenet")
	net := core.NewRhymeNet(store, nil, config.Default().Search, collector, nil)
	return NewServer(net, collector, nil, cfg, nil)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}, session string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestNetwork_FixtureSearch(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/network", gin.H{"seed": "Phone", "max_depth": 2}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(SessionHeader))

	resp := decode[NetworkResponse](t, w)
	assert.NotEmpty(t, resp.SearchID)
	assert.Equal(t, core.StatusOK, resp.Status)
	assert.Equal(t, "phone", resp.Network.SeedWord)
	assert.Equal(t, 3, resp.Network.TotalWords)
	assert.Equal(t, 2, resp.Network.MaxDepthReached)

	byWord := map[string]model.SortableRecord{}
	for _, rec := range resp.Records {
		byWord[rec.Word] = rec
	}
	require.Contains(t, byWord, "tone")
	assert.Equal(t, 2, byWord["tone"].Frequency)
	assert.Equal(t, model.Perfect, byWord["tone"].RhymeType)
	assert.Equal(t, 2, byWord["stone"].Depth)
	assert.NotContains(t, byWord, "phone")
}

func TestNetwork_Validation(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/network", gin.H{"max_depth": 2}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/network", gin.H{"seed": "   "}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone", "max_depth": -1}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNetwork_UnknownWordIsEmpty(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/network", gin.H{"seed": "orange"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, core.StatusEmpty, decode[NetworkResponse](t, w).Status)
}

func TestNetwork_ClosedStoreIsPartial(t *testing.T) {
	srv, store := newFixtureServer(t)
	r := srv.SetupRouter()
	require.NoError(t, store.Close(context.Background()))

	w := do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[NetworkResponse](t, w)
	assert.Equal(t, core.StatusPartial, resp.Status)
	require.NotNil(t, resp.Network.Failure)
	assert.Equal(t, 1, resp.Network.Failure.Depth)

	w = do(t, r, http.MethodPost, "/simple", gin.H{"word": "phone"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRecords_UsesSessionNetwork(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/network/records", gin.H{}, "fresh")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone", "max_depth": 2}, "abc")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/network/records", gin.H{"filters": gin.H{"depths": []int{2}}}, "abc")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Records []model.SortableRecord `json:"records"`
		Active  int                    `json:"active"`
	}](t, w)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "stone", body.Records[0].Word)
	assert.Equal(t, 1, body.Active)
}

func TestSessions_BoundedByMaxSessions(t *testing.T) {
	_, store := newFixtureServer(t)
	cfg := config.Default().Server
	cfg.Mode = gin.TestMode
	cfg.MaxSessions = 5
	srv := newServerWith(store, cfg)
	r := srv.SetupRouter()

	// no session header, so every request mints a new session
	for i := 0; i < 50; i++ {
		w := do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone", "max_depth": 1}, "")
		require.Equal(t, http.StatusOK, w.Code)
		require.NotEmpty(t, w.Header().Get(SessionHeader))
	}
	assert.Equal(t, 5, srv.sessions.Len())
}

func TestSessions_ExpireAfterTTL(t *testing.T) {
	_, store := newFixtureServer(t)
	cfg := config.Default().Server
	cfg.Mode = gin.TestMode
	cfg.SessionTTLSeconds = 1
	srv := newServerWith(store, cfg)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone", "max_depth": 1}, "idle")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodPost, "/network/records", gin.H{}, "idle")
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(1500 * time.Millisecond)
	w = do(t, r, http.MethodPost, "/network/records", gin.H{}, "idle")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecords_DoesNotCreateSessions(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	for _, id := range []string{"ghost", ""} {
		w := do(t, r, http.MethodPost, "/network/records", gin.H{}, id)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Equal(t, 0, srv.sessions.Len())
}

func TestSort_Ops(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	type orderBody struct {
		Order model.SortOrder `json:"order"`
	}

	w := do(t, r, http.MethodPost, "/sort", gin.H{"op": "add", "field": "frequency"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	order := decode[orderBody](t, w).Order
	require.Len(t, order, 1)
	assert.Equal(t, model.Desc, order[0].Direction)

	w = do(t, r, http.MethodPost, "/sort", gin.H{"op": "toggle", "id": order[0].ID, "order": order}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.Asc, decode[orderBody](t, w).Order[0].Direction)

	w = do(t, r, http.MethodPost, "/sort", gin.H{"op": "remove", "id": order[0].ID, "order": order}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[orderBody](t, w).Order)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/sort", gin.H{"op": "shuffle"}, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/sort", gin.H{"op": "add"}, "").Code)
}

func TestSimpleSearch(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/simple", gin.H{"word": "phone"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[struct {
		Count int `json:"count"`
	}](t, w).Count)

	w = do(t, r, http.MethodPost, "/simple", gin.H{"word": "phone", "filters": gin.H{"genres": []string{"pop"}}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Results []model.SimpleResult `json:"results"`
	}](t, w)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "song-telephone-line", body.Results[0].Song.ID)
	assert.Equal(t, 1, body.Results[0].LineNumber)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/simple", gin.H{}, "").Code)
}

func TestFigurativeSearch(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/figurative", gin.H{"type": "simile"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Results []model.FigurativeResult `json:"results"`
		Count   int                      `json:"count"`
	}](t, w)
	assert.Equal(t, 3, body.Count)
	for _, res := range body.Results {
		assert.Contains(t, []string{"like", "as"}, res.Keyword)
	}

	w = do(t, r, http.MethodPost, "/figurative", gin.H{"keywords": []string{"is a"}, "filters": gin.H{"artists": []string{"granite"}}}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decode[struct {
		Results []model.FigurativeResult `json:"results"`
		Count   int                      `json:"count"`
	}](t, w)
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "My love is a burning fire", body.Results[0].Line)

	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/figurative", gin.H{}, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, r, http.MethodPost, "/figurative", gin.H{"type": "idiom"}, "").Code)
}

func TestRankFigurative_WithoutLLM(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	lines := []gin.H{{"line": "Heart as cold as stone", "song": "Stone Cold"}}
	w := do(t, r, http.MethodPost, "/figurative/rank", gin.H{"lines": lines, "desired_meaning": "heartbreak"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Heart as cold as stone")

	w = do(t, r, http.MethodPost, "/figurative/rank", gin.H{"lines": lines}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLyrics(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodGet, "/songs/song-dial-tone/lyrics?highlight=stone", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[core.LyricsView](t, w)
	assert.Contains(t, view.Lyrics, "Pick up the phone")
	require.Len(t, view.Contexts, 1)
	assert.Equal(t, 3, view.Contexts[0].LineNumber)
	assert.Equal(t, []string{"Pick up the phone", "This is the dial tone"}, view.Contexts[0].LinesBefore)

	w = do(t, r, http.MethodGet, "/songs/missing/lyrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFacets(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodGet, "/facets", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	facets := decode[model.Facets](t, w)
	assert.Equal(t, []string{"hip-hop", "pop", "rock"}, facets.Genres)
	assert.Equal(t, []int{2010, 2005, 1999}, facets.Years)
	assert.Equal(t, []string{"Granite", "The Dials"}, facets.Artists)
}

func TestNextLine_WithoutLLM(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	w := do(t, r, http.MethodPost, "/lines/next", gin.H{"rhyme_target": "phone", "syllable_count": 8}, "")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

type fixedBreaker gobreaker.State

func (b fixedBreaker) State() gobreaker.State { return gobreaker.State(b) }

func TestHealth(t *testing.T) {
	srv, _ := newFixtureServer(t)
	w := do(t, srv.SetupRouter(), http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unmonitored")

	srv.Breaker = fixedBreaker(gobreaker.StateClosed)
	w = do(t, srv.SetupRouter(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"closed"`)

	srv.Breaker = fixedBreaker(gobreaker.StateOpen)
	w = do(t, srv.SetupRouter(), http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newFixtureServer(t)
	r := srv.SetupRouter()

	do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone"}, "")
	w := do(t, r, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `rhymenet_http_requests_total{method="POST",route="/network",status="200"} 1`)
	assert.Contains(t, w.Body.String(), `rhymenet_searches_total{mode="network",status="ok"} 1`)
}

// gatedStore holds FetchEdges for one seed until released.
type gatedStore struct {
	driver.EdgeStore
	driver.LyricsStore

	slow    string
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) FetchEdges(ctx context.Context, frontier []string, filter model.EdgeFilter) ([]model.RhymeEdge, error) {
	if len(frontier) == 1 && frontier[0] == g.slow {
		close(g.entered)
		<-g.release
	}
	return g.EdgeStore.FetchEdges(ctx, frontier, filter)
}

func TestNetwork_SupersededSearchConflicts(t *testing.T) {
	_, store := newFixtureServer(t)
	gated := &gatedStore{
		EdgeStore:   store,
		LyricsStore: store,
		slow:        "phone",
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	r := newServer(gated).SetupRouter()

	var slow *httptest.ResponseRecorder
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		slow = do(t, r, http.MethodPost, "/network", gin.H{"seed": "phone", "max_depth": 1}, "writer")
	}()

	<-gated.entered
	fast := do(t, r, http.MethodPost, "/network", gin.H{"seed": "tone", "max_depth": 1}, "writer")
	close(gated.release)
	wg.Wait()

	assert.Equal(t, http.StatusOK, fast.Code)
	assert.Equal(t, http.StatusConflict, slow.Code)

	w := do(t, r, http.MethodPost, "/network/records", gin.H{}, "writer")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"word":"alone"`)
}
