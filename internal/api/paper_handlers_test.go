package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kouichiii/paper-manager/internal/ratelimit"
	"github.com/kouichiii/paper-manager/internal/service"
	"github.com/kouichiii/paper-manager/internal/store/sqlite"
	"github.com/kouichiii/paper-manager/internal/validation"
)

// errorEnvelope mirrors the JSON error body for assertions.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"details"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// paperTestServer wraps the API server for handler testing.
type paperTestServer struct {
	*Server
	api humatest.TestAPI
}

func setupPaperTestServer(t *testing.T) *paperTestServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	papers := service.NewPaperService(st, validation.New(), logger)

	router := chi.NewRouter()
	humaConfig := huma.DefaultConfig("Paper Manager API Test", "1.0.0")
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:        st,
		papers:       papers,
		router:       router,
		api:          api,
		writeLimiter: ratelimit.New(1000, 1000),
		logger:       logger,
	}
	t.Cleanup(s.Close)

	s.registerHealthRoutes()
	s.registerPaperRoutes()

	return &paperTestServer{
		Server: s,
		api:    humatest.Wrap(t, api),
	}
}

// createPaper creates a paper via the API and returns its row.
func (ts *paperTestServer) createPaper(t *testing.T, body map[string]any) service.PaperRow {
	t.Helper()

	resp := ts.api.Post("/api/papers", body)
	require.Equal(t, http.StatusCreated, resp.Code, "create failed: %s", resp.Body.String())

	var row service.PaperRow
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &row))
	return row
}

func TestCreatePaper_Success(t *testing.T) {
	ts := setupPaperTestServer(t)

	before := time.Now().UnixMilli()
	row := ts.createPaper(t, map[string]any{
		"title":   "Dynamo: Amazon's Highly Available Key-value Store",
		"authors": "DeCandia et al.",
		"year":    2007,
		"url":     "https://example.com/dynamo.pdf",
	})

	assert.NotZero(t, row.ID)
	assert.Equal(t, "UNREAD", row.Status)
	assert.Equal(t, []string{}, row.Tags)
	require.NotNil(t, row.Year)
	assert.Equal(t, 2007, *row.Year)
	assert.GreaterOrEqual(t, row.CreatedAt, before)
}

func TestCreatePaper_MissingTitle(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Post("/api/papers", map[string]any{"authors": "Anonymous"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "BAD_REQUEST", envelope.Code)
	assert.Equal(t, "/api/papers", envelope.Path)
	assert.NotEmpty(t, envelope.Timestamp)
}

func TestCreatePaper_BlankTitle(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Post("/api/papers", map[string]any{"title": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Details)
	assert.Equal(t, "title", envelope.Details[0].Field)
}

func TestCreatePaper_YearOutOfRange(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Post("/api/papers", map[string]any{"title": "Old Paper", "year": 1495})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Details)
	assert.Equal(t, "year", envelope.Details[0].Field)
}

func TestGetPaper_NotFound(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Get("/api/papers/12345")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "NOT_FOUND", envelope.Code)
	assert.Contains(t, envelope.Message, "12345")
	assert.Equal(t, "/api/papers/12345", envelope.Path)
}

func TestUpdatePaper_PartialLeavesOtherFields(t *testing.T) {
	ts := setupPaperTestServer(t)

	created := ts.createPaper(t, map[string]any{
		"title": "Spanner", "authors": "Corbett", "year": 2012, "url": "https://example.com/spanner.pdf",
	})

	resp := ts.api.Patch(fmt.Sprintf("/api/papers/%d", created.ID), map[string]any{
		"authors": "Corbett et al.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var row service.PaperRow
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &row))
	assert.Equal(t, "Corbett et al.", row.Authors)
	assert.Equal(t, created.Title, row.Title)
	assert.Equal(t, created.Year, row.Year)
	assert.Equal(t, created.URL, row.URL)
	assert.Equal(t, created.Status, row.Status)
	assert.Equal(t, created.CreatedAt, row.CreatedAt)
}

func TestUpdatePaper_NotFound(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Patch("/api/papers/777", map[string]any{"title": "New Title"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSetPaperStatus_LowercaseAccepted(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "Bigtable"})

	resp := ts.api.Patch(fmt.Sprintf("/api/papers/%d/status", created.ID), map[string]any{
		"status": "reading",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var row service.PaperRow
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &row))
	assert.Equal(t, "READING", row.Status)
}

func TestSetPaperStatus_InvalidValue(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "Bigtable"})

	resp := ts.api.Patch(fmt.Sprintf("/api/papers/%d/status", created.ID), map[string]any{
		"status": "archived",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope errorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "BAD_REQUEST", envelope.Code)

	// Stored status is unchanged.
	getResp := ts.api.Get(fmt.Sprintf("/api/papers/%d", created.ID))
	require.Equal(t, http.StatusOK, getResp.Code)
	var row service.PaperRow
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &row))
	assert.Equal(t, "UNREAD", row.Status)
}

func TestAddPaperTag_CaseInsensitiveDeduplication(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "AlphaGo"})

	resp := ts.api.Post(fmt.Sprintf("/api/papers/%d/tags", created.ID), map[string]any{"tag": "AI"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post(fmt.Sprintf("/api/papers/%d/tags", created.ID), map[string]any{"tag": "ai"})
	require.Equal(t, http.StatusOK, resp.Code)

	var row service.PaperRow
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &row))
	assert.Equal(t, []string{"ai"}, row.Tags)
}

func TestAddPaperTag_PaperNotFound(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Post("/api/papers/404/tags", map[string]any{"tag": "ml"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRemovePaperTag_NeverAttached(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "Some Paper"})

	resp := ts.api.Delete(fmt.Sprintf("/api/papers/%d/tags/ghost", created.ID))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestRemovePaperTag_Removes(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "Some Paper"})

	resp := ts.api.Post(fmt.Sprintf("/api/papers/%d/tags", created.ID), map[string]any{"tag": "db"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete(fmt.Sprintf("/api/papers/%d/tags/DB", created.ID))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	getResp := ts.api.Get(fmt.Sprintf("/api/papers/%d", created.ID))
	var row service.PaperRow
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &row))
	assert.Equal(t, []string{}, row.Tags)
}

func TestDeletePaper_ThenFetch(t *testing.T) {
	ts := setupPaperTestServer(t)
	created := ts.createPaper(t, map[string]any{"title": "To Be Deleted"})

	resp := ts.api.Delete(fmt.Sprintf("/api/papers/%d", created.ID))
	assert.Equal(t, http.StatusNoContent, resp.Code)

	getResp := ts.api.Get(fmt.Sprintf("/api/papers/%d", created.ID))
	assert.Equal(t, http.StatusNotFound, getResp.Code)

	// Deleting again reports not found.
	resp = ts.api.Delete(fmt.Sprintf("/api/papers/%d", created.ID))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListPapers_Filters(t *testing.T) {
	ts := setupPaperTestServer(t)

	p1 := ts.createPaper(t, map[string]any{"title": "QUIC Survey"})
	resp := ts.api.Post(fmt.Sprintf("/api/papers/%d/tags", p1.ID), map[string]any{"tag": "net"})
	require.Equal(t, http.StatusOK, resp.Code)

	p2 := ts.createPaper(t, map[string]any{"title": "ML Basics"})
	resp = ts.api.Post(fmt.Sprintf("/api/papers/%d/tags", p2.ID), map[string]any{"tag": "ml"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Patch(fmt.Sprintf("/api/papers/%d/status", p2.ID), map[string]any{"status": "DONE"})
	require.Equal(t, http.StatusOK, resp.Code)

	var page service.PageResult

	// Substring query.
	resp = ts.api.Get("/api/papers?q=quic")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, p1.ID, page.Content[0].ID)

	// Status filter.
	resp = ts.api.Get("/api/papers?status=DONE")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, p2.ID, page.Content[0].ID)

	// Tag OR semantics across repeated query params.
	resp = ts.api.Get("/api/papers?tags=net&tags=ml")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Len(t, page.Content, 2)

	// A later repeated param must still apply when the first matches nothing.
	resp = ts.api.Get("/api/papers?tags=bio&tags=ml")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Content, 1)
	assert.Equal(t, p2.ID, page.Content[0].ID)
}

func TestListPapers_Pagination(t *testing.T) {
	ts := setupPaperTestServer(t)

	for i := range 25 {
		ts.createPaper(t, map[string]any{"title": fmt.Sprintf("Paper %d", i)})
	}

	var page service.PageResult

	resp := ts.api.Get("/api/papers?page=0&size=10")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Len(t, page.Content, 10)
	assert.Equal(t, int64(25), page.Total)
	assert.True(t, page.HasNext)
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.Size)

	resp = ts.api.Get("/api/papers?page=2&size=10")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Len(t, page.Content, 5)
	assert.False(t, page.HasNext)

	// Past the end is an empty page, not an error.
	resp = ts.api.Get("/api/papers?page=3&size=10")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Empty(t, page.Content)
}

func TestListPapers_Defaults(t *testing.T) {
	ts := setupPaperTestServer(t)
	ts.createPaper(t, map[string]any{"title": "Only Paper"})

	resp := ts.api.Get("/api/papers")
	require.Equal(t, http.StatusOK, resp.Code)

	var page service.PageResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Page)
	assert.Equal(t, 10, page.Size)
}

func TestListPapers_BoundsRejected(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Get("/api/papers?page=-1")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/papers?size=0")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/papers?size=500")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListPapers_NewestFirst(t *testing.T) {
	ts := setupPaperTestServer(t)

	first := ts.createPaper(t, map[string]any{"title": "Older"})
	second := ts.createPaper(t, map[string]any{"title": "Newer"})

	resp := ts.api.Get("/api/papers")
	require.Equal(t, http.StatusOK, resp.Code)

	var page service.PageResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Content, 2)
	assert.Equal(t, second.ID, page.Content[0].ID)
	assert.Equal(t, first.ID, page.Content[1].ID)
}

func TestHealthCheck(t *testing.T) {
	ts := setupPaperTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["database"].Status)
}
