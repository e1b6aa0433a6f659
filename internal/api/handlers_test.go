package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/pdf-prints/internal/model"
	"github.com/nhle/pdf-prints/internal/query"
	"github.com/nhle/pdf-prints/internal/service"
	"github.com/nhle/pdf-prints/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()

	svc := service.New(store.NewMemoryStore(), service.WithClock(func() time.Time { return fixedNow }))
	return Router(NewHandler(svc)), svc
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out), "body=%q", rr.Body.String())
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/v1/health", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]bool
	decodeJSON(t, rr, &got)
	assert.True(t, got["ok"])
}

func TestCreateAndGetPDF(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/v1/pdfs", `{"name":"Report A","due_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created model.PDF
	decodeJSON(t, rr, &created)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Report A", created.Name)
	assert.Equal(t, model.StatusPending, created.Status)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2024-01-01", created.DueDate.String())

	rr = do(t, h, http.MethodGet, "/v1/pdfs/"+created.ID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got model.PDF
	decodeJSON(t, rr, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.CreatedAt.Equal(fixedNow))
}

func TestCreatePDFRejectsBadInput(t *testing.T) {
	h, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "unknown status", body: `{"name":"x","status":"ARCHIVED"}`, want: "validation_failed"},
		{name: "bad date", body: `{"name":"x","due_date":"01/02/2024"}`, want: "invalid_request"},
		{name: "not json", body: `{`, want: "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, http.MethodPost, "/v1/pdfs", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)

			var got map[string]any
			decodeJSON(t, rr, &got)
			assert.Equal(t, tt.want, got["error"])
		})
	}
}

func TestGetPDFNotFound(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/v1/pdfs/missing", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	var got map[string]any
	decodeJSON(t, rr, &got)
	assert.Equal(t, "not_found", got["error"])
}

func TestUpdateStatus(t *testing.T) {
	h, svc := newTestRouter(t)

	created, err := svc.CreatePDF(context.Background(), "Flyer", nil, nil)
	require.NoError(t, err)

	rr := do(t, h, http.MethodPatch, "/v1/pdfs/"+created.ID+"/status", `{"status":"PRINTED"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var got model.PDF
	decodeJSON(t, rr, &got)
	assert.Equal(t, model.StatusPrinted, got.Status)

	rr = do(t, h, http.MethodPatch, "/v1/pdfs/missing/status", `{"status":"SENT"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPatch, "/v1/pdfs/"+created.ID+"/status", `{"status":"LOST"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListAndCountPDFs(t *testing.T) {
	h, svc := newTestRouter(t)
	ctx := context.Background()

	past := model.DateOf(fixedNow).AddDays(-5)
	future := model.DateOf(fixedNow).AddDays(5)
	for _, in := range []struct {
		name string
		due  *model.Date
	}{
		{"Invoice2024", &past},
		{"Receipt", &future},
		{"Voice note", nil},
	} {
		_, err := svc.CreatePDF(ctx, in.name, in.due, nil)
		require.NoError(t, err)
	}

	rr := do(t, h, http.MethodGet, "/v1/pdfs?q=voice&sort=name", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var page store.Page
	decodeJSON(t, rr, &page)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Invoice2024", page.Items[0].Name)
	assert.Equal(t, "Voice note", page.Items[1].Name)
	assert.Equal(t, defaultLimit, page.Limit)

	rr = do(t, h, http.MethodGet, "/v1/pdfs/count?due=OVERDUE", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var count map[string]int
	decodeJSON(t, rr, &count)
	assert.Equal(t, 1, count["count"])

	rr = do(t, h, http.MethodGet, "/v1/pdfs?limit=1&offset=1&sort=name&desc=true", "")
	require.Equal(t, http.StatusOK, rr.Code)
	decodeJSON(t, rr, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Receipt", page.Items[0].Name)

	rr = do(t, h, http.MethodGet, "/v1/pdfs?due=SOMEDAY", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/v1/pdfs?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListParamsLimitIsCapped(t *testing.T) {
	p := listParams{Limit: 10_000}
	assert.Equal(t, maxLimit, p.pageRequest().Limit)

	p = listParams{}
	assert.Equal(t, defaultLimit, p.pageRequest().Limit)
	assert.Empty(t, p.pageRequest().Sort)
}

type failingService struct{ PDFService }

func (failingService) List(context.Context, query.Criteria, store.PageRequest) (store.Page, error) {
	return store.Page{}, errors.New("disk on fire")
}

func TestListPDFsInternalError(t *testing.T) {
	h := Router(NewHandler(failingService{}))

	rr := do(t, h, http.MethodGet, "/v1/pdfs", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)

	var got map[string]any
	decodeJSON(t, rr, &got)
	assert.Equal(t, "internal", got["error"])
}
