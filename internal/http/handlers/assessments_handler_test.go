package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-risk-gateway/internal/domain"
	"github.com/tbourn/go-risk-gateway/internal/repo"
	"github.com/tbourn/go-risk-gateway/internal/services"
)

// ---------- test DB + repo shim ----------

func newHistoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:history_handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.AssessmentRepo using repo package (like router.go)
type testAssessmentRepo struct{}

func (testAssessmentRepo) CreateAssessment(ctx context.Context, db *gorm.DB, address, risk string, payload domain.Payload) (*domain.RiskAssessment, error) {
	return repo.CreateAssessment(ctx, db, address, risk, payload)
}

func (testAssessmentRepo) ListLatestAssessments(ctx context.Context, db *gorm.DB, limit int) ([]domain.RiskAssessment, error) {
	return repo.ListLatestAssessments(ctx, db, limit)
}

func (testAssessmentRepo) AssessmentsStats(ctx context.Context, db *gorm.DB) (int64, uint64, error) {
	return repo.AssessmentsStats(ctx, db)
}

func historyRouter(svc AssessmentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, svc)
	r := gin.New()
	r.POST("/api/insert", h.InsertAssessment)
	r.GET("/api/fetchLatest", h.LatestAssessments)
	return r
}

func postInsert(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/insert", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func getLatest(r http.Handler, query, inm string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/fetchLatest"+query, nil)
	if inm != "" {
		req.Header.Set("If-None-Match", inm)
	}
	r.ServeHTTP(w, req)
	return w
}

// ---------- parseInsert ----------

func TestParseInsert_PayloadSelection(t *testing.T) {
	cases := []struct {
		name, body, wantPayload string
	}{
		{"data object", `{"address":"0xA","risk":"Low","data":{ "k": 1 }}`, `{ "k": 1 }`},
		{"data array", `{"address":"0xA","risk":"Low","data":[1,2]}`, `[1,2]`},
		{"flattened", `{"address":"0xA","risk":"Low","cluster":{"name":"x"}}`, `{"address":"0xA","risk":"Low","cluster":{"name":"x"}}`},
		{"data null", `{"address":"0xA","risk":"Low","data":null}`, `{"address":"0xA","risk":"Low","data":null}`},
	}
	for _, tc := range cases {
		in, err := parseInsert([]byte(tc.body))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if string(in.Payload) != tc.wantPayload {
			t.Fatalf("%s: payload=%s want %s", tc.name, in.Payload, tc.wantPayload)
		}
		if in.Address != "0xA" || in.Risk != "Low" {
			t.Fatalf("%s: fields=%+v", tc.name, in)
		}
	}

	if in, err := parseInsert(nil); err != nil || in.Address != "" {
		t.Fatalf("empty body: %+v %v", in, err)
	}
	if _, err := parseInsert([]byte(`[1]`)); err == nil {
		t.Fatalf("expected error for non-object body")
	}
}

// ---------- InsertAssessment ----------

func TestInsertAssessment_Stored(t *testing.T) {
	var got services.RecordInput
	r := historyRouter(stubAssessSvc{
		record: func(_ context.Context, in services.RecordInput) (*domain.RiskAssessment, error) {
			got = in
			return &domain.RiskAssessment{ID: 1, Address: in.Address}, nil
		},
	})
	w := postInsert(r, `{"address":"0xABC","risk":"Low","data":{"risk":"Low"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != `{"message":"Data stored in database"}` {
		t.Fatalf("body=%s", w.Body.String())
	}
	if got.Address != "0xABC" || string(got.Payload) != `{"risk":"Low"}` {
		t.Fatalf("service input=%+v", got)
	}
}

func TestInsertAssessment_ValidationErrors(t *testing.T) {
	db := newHistoryDB(t)
	r := historyRouter(services.NewAssessmentService(db, testAssessmentRepo{}, 5))

	cases := []struct{ body, code string }{
		{``, "missing_address"},
		{`{"risk":"Low"}`, "missing_address"},
		{`{"address":"0xABC"}`, "missing_risk"},
		{`{"address":"0xABC","risk":"Low","data":"str"}`, "invalid_payload"},
		{`{"address":`, "bad_request"},
	}
	for _, tc := range cases {
		w := postInsert(r, tc.body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status=%d", tc.body, w.Code)
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != tc.code {
			t.Fatalf("body %q: envelope=%s", tc.body, w.Body.String())
		}
	}

	n, _ := repo.CountAssessments(context.Background(), db)
	if n != 0 {
		t.Fatalf("rejected inserts must not be stored, count=%d", n)
	}
}

func TestInsertAssessment_StoreFailure500(t *testing.T) {
	r := historyRouter(stubAssessSvc{
		record: func(context.Context, services.RecordInput) (*domain.RiskAssessment, error) {
			return nil, &services.PersistenceError{Kind: services.WriteFailed, Err: errors.New("pq: connection refused")}
		},
	})
	w := postInsert(r, `{"address":"0xABC","risk":"Low"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Message != "Internal server error" || er.Code != ErrCodeStoreFailed {
		t.Fatalf("envelope=%+v", er)
	}
	if strings.Contains(w.Body.String(), "pq:") {
		t.Fatalf("storage detail leaked: %s", w.Body.String())
	}
}

// ---------- LatestAssessments ----------

func TestLatestAssessments_WriteThenReadAndETag(t *testing.T) {
	db := newHistoryDB(t)
	r := historyRouter(services.NewAssessmentService(db, testAssessmentRepo{}, 5))

	// Empty store → empty array, never null.
	w := getLatest(r, "", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("empty: status=%d body=%s", w.Code, w.Body.String())
	}

	for i := 0; i < 7; i++ {
		body := fmt.Sprintf(`{"address":"0x%d","risk":"Low","data":{"n":%d}}`, i, i)
		if w := postInsert(r, body); w.Code != http.StatusOK {
			t.Fatalf("insert %d: %d", i, w.Code)
		}
	}

	w = getLatest(r, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var items []domain.RiskAssessment
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 items, got %d", len(items))
	}
	if items[0].Address != "0x6" || string(items[0].Data) != `{"n":6}` {
		t.Fatalf("newest first violated: %+v", items[0])
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID <= items[i].ID {
			t.Fatalf("not descending at %d", i)
		}
	}

	etag := w.Header().Get("ETag")
	if !strings.HasPrefix(etag, `W/"history:5:7:`) {
		t.Fatalf("etag=%q", etag)
	}
	if w := getLatest(r, "", etag); w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	// New write invalidates the tag.
	postInsert(r, `{"address":"0x7","risk":"High"}`)
	w = getLatest(r, "", etag)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after write, got %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &items)
	if items[0].Address != "0x7" {
		t.Fatalf("fresh write not at index 0: %+v", items[0])
	}
}

func TestLatestAssessments_ETagNamesConfiguredHistorySize(t *testing.T) {
	db := newHistoryDB(t)
	r := historyRouter(services.NewAssessmentService(db, testAssessmentRepo{}, 3))
	for i := 0; i < 4; i++ {
		postInsert(r, fmt.Sprintf(`{"address":"0x%d","risk":"Low"}`, i))
	}

	for _, q := range []string{"", "?limit=5", "?limit=3"} {
		w := getLatest(r, q, "")
		var items []domain.RiskAssessment
		if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
			t.Fatalf("%q: json: %v", q, err)
		}
		if len(items) != 3 {
			t.Fatalf("%q: got %d items; want 3", q, len(items))
		}
		if etag := w.Header().Get("ETag"); !strings.HasPrefix(etag, `W/"history:3:4:`) {
			t.Fatalf("%q: etag=%q does not match the 3 served rows", q, etag)
		}
	}
	if w := getLatest(r, "?limit=2", ""); !strings.HasPrefix(w.Header().Get("ETag"), `W/"history:2:4:`) {
		t.Fatalf("smaller limit etag=%q", w.Header().Get("ETag"))
	}
}

func TestLatestAssessments_LimitQuery(t *testing.T) {
	var gotLimit int
	r := historyRouter(stubAssessSvc{
		latest: func(_ context.Context, limit int) ([]domain.RiskAssessment, error) {
			gotLimit = limit
			return []domain.RiskAssessment{}, nil
		},
	})
	cases := []struct {
		q    string
		want int
	}{
		{"", 5},
		{"?limit=2", 2},
		{"?limit=0", 1},
		{"?limit=99", 5},
		{"?limit=abc", 5},
	}
	for _, tc := range cases {
		if w := getLatest(r, tc.q, ""); w.Code != http.StatusOK {
			t.Fatalf("%q: status=%d", tc.q, w.Code)
		}
		if gotLimit != tc.want {
			t.Fatalf("%q: limit=%d want %d", tc.q, gotLimit, tc.want)
		}
	}
}

func TestLatestAssessments_ReadFailure500(t *testing.T) {
	r := historyRouter(stubAssessSvc{
		latest: func(context.Context, int) ([]domain.RiskAssessment, error) {
			return nil, &services.PersistenceError{Kind: services.ReadFailed, Err: errors.New("timeout")}
		},
	})
	w := getLatest(r, "", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", w.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &er)
	if er.Message != "DB Fetch error" {
		t.Fatalf("message=%q", er.Message)
	}
}

func TestInsertAssessment_BodyTooLarge413(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	h := New(nil, stubAssessSvc{
		record: func(context.Context, services.RecordInput) (*domain.RiskAssessment, error) {
			called = true
			return &domain.RiskAssessment{}, nil
		},
	})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)
		c.Next()
	})
	r.POST("/api/insert", h.InsertAssessment)

	w := postInsert(r, `{"address":"0xABC","risk":"Low","data":{"padding":"xxxxxxxxxxxxxxxx"}}`)
	if w.Code != http.StatusRequestEntityTooLarge || called {
		t.Fatalf("status=%d called=%v", w.Code, called)
	}
}
