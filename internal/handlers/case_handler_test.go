package handlers_test

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/handlers"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/model"
	"CaseKeeper/internal/repo"
	"CaseKeeper/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAdminSecret = "letmein"

func newCaseTestRouter(t *testing.T, r repo.CaseRepository, cfg *config.Config) chi.Router {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{AdminPassword: testAdminSecret}
	}
	logger := zap.NewNop().Sugar()
	middleware.SetLogger(logger)
	svc := service.NewCaseService(r, logger, time.FixedZone("ICT", 7*3600))
	return handlers.NewHandler(svc, logger, cfg).Router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeCase(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m
}

func messageOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var m handlers.MessageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m), rr.Body.String())
	return m.Message
}

var admin = map[string]string{middleware.AdminPasswordHeader: testAdminSecret}

func TestCaseHandlers_FullLifecycle(t *testing.T) {
	router := newCaseTestRouter(t, repo.NewMemoryCaseRepository(), nil)

	rr := doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"farmer_name": "Somchai", "farmer_account_no": "AC-10001",
		"cabinet_no": 3, "shelf_no": 2, "sequence_no": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	created := decodeCase(t, rr)
	id := created["id"].(string)
	assert.Equal(t, "InRoom", created["status"])
	assert.Equal(t, "System", created["last_updated_by_user_name"])
	assert.Nil(t, created["borrowed_by_user_name"])
	assert.True(t, strings.HasSuffix(created["last_updated_timestamp"].(string), "+07:00"))

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "borrow", "borrower_name": "Jennifer"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	borrowed := decodeCase(t, rr)
	assert.Equal(t, "Borrowed", borrowed["status"])
	assert.Equal(t, "Jennifer", borrowed["borrowed_by_user_name"])
	assert.NotNil(t, borrowed["borrowed_date"])
	assert.Nil(t, borrowed["returned_date"])

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "borrow", "borrower_name": "Robert"}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "Case is already borrowed", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "return", "borrower_name": "Jennifer"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	returned := decodeCase(t, rr)
	assert.Equal(t, "InRoom", returned["status"])
	assert.Equal(t, "Jennifer", returned["borrowed_by_user_name"])
	assert.Equal(t, borrowed["borrowed_date"], returned["borrowed_date"])
	assert.NotNil(t, returned["returned_date"])

	rr = doJSON(t, router, http.MethodPut, "/api/cases/"+id, map[string]any{"shelf_no": 5}, admin)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decodeCase(t, rr)
	assert.Equal(t, float64(5), updated["shelf_no"])
	assert.Equal(t, "Somchai", updated["farmer_name"])
	assert.Equal(t, "InRoom", updated["status"])
	assert.Equal(t, "Jennifer", updated["borrowed_by_user_name"])

	rr = doJSON(t, router, http.MethodGet, "/api/cases", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0]["id"])

	rr = doJSON(t, router, http.MethodDelete, "/api/cases/"+id, nil, admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Case deleted successfully", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodGet, "/api/cases/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Case not found", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodDelete, "/api/cases/"+id, nil, admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCaseHandlers_Validation(t *testing.T) {
	router := newCaseTestRouter(t, repo.NewMemoryCaseRepository(), nil)

	rr := doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{"farmer_name": "Only name"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing required fields", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"farmer_name": "A", "farmer_account_no": "B", "cabinet_no": "x", "shelf_no": 1, "sequence_no": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/api/cases", `{"farmer_name":`, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// numeric strings are coerced
	rr = doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"farmer_name": "A", "farmer_account_no": "B", "cabinet_no": "7", "shelf_no": "8", "sequence_no": 9,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decodeCase(t, rr)
	assert.Equal(t, float64(7), created["cabinet_no"])
	id := created["id"].(string)

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "borrow"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Missing action or borrower_name", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "lend", "borrower_name": "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid action", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/nope/status", map[string]string{"action": "borrow", "borrower_name": "X"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// unknown id wins over a malformed body
	rr = doJSON(t, router, http.MethodPatch, "/api/cases/nope/status", map[string]string{"action": "borrow"}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Case not found", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "BORROW", "borrower_name": "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid action", messageOf(t, rr))

	rr = doJSON(t, router, http.MethodPut, "/api/cases/nope", map[string]any{"shelf_no": 1}, admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCaseHandlers_UpdateIgnoresStatusFields(t *testing.T) {
	router := newCaseTestRouter(t, repo.NewMemoryCaseRepository(), nil)
	rr := doJSON(t, router, http.MethodPost, "/api/cases", map[string]any{
		"farmer_name": "A", "farmer_account_no": "B", "cabinet_no": 1, "shelf_no": 1, "sequence_no": 1,
	}, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	id := decodeCase(t, rr)["id"].(string)

	headers := map[string]string{middleware.AdminPasswordHeader: testAdminSecret, handlers.ActorHeader: "Admin Ann"}
	rr = doJSON(t, router, http.MethodPut, "/api/cases/"+id, map[string]any{
		"status": "Borrowed", "borrowed_by_user_name": "Mallory", "id": "other", "farmer_name": "Renamed",
	}, headers)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeCase(t, rr)
	assert.Equal(t, id, got["id"])
	assert.Equal(t, "InRoom", got["status"])
	assert.Nil(t, got["borrowed_by_user_name"])
	assert.Equal(t, "Renamed", got["farmer_name"])
	assert.Equal(t, "Admin Ann", got["last_updated_by_user_name"])
}

func TestCaseHandlers_AdminGate(t *testing.T) {
	r := repo.NewMemoryCaseRepository()
	c := model.Case{FarmerName: "A", FarmerAccountNo: "B", Status: model.StatusInRoom, LastUpdatedTimestamp: time.Now()}
	id, err := r.Create(context.Background(), &c)
	require.NoError(t, err)
	router := newCaseTestRouter(t, r, nil)

	rr := doJSON(t, router, http.MethodPut, "/api/cases/"+id, map[string]any{"shelf_no": 2}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/api/cases/"+id, nil, map[string]string{middleware.AdminPasswordHeader: "wrong"})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// the record survived both attempts
	rr = doJSON(t, router, http.MethodGet, "/api/cases/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(0), decodeCase(t, rr)["shelf_no"])

	// borrow/return stays open to staff
	rr = doJSON(t, router, http.MethodPatch, "/api/cases/"+id+"/status", map[string]string{"action": "borrow", "borrower_name": "Jennifer"}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// brokenRepo fails every operation like an unreachable backend.
type brokenRepo struct{}

var errDiskGone = fmt.Errorf("%w: disk gone", repo.ErrStorage)

func (brokenRepo) Create(context.Context, *model.Case) (string, error) { return "", errDiskGone }
func (brokenRepo) GetByID(context.Context, string) (*model.Case, error) {
	return nil, errDiskGone
}
func (brokenRepo) ListAll(context.Context) ([]model.Case, error) { return nil, errDiskGone }
func (brokenRepo) FindByLocation(context.Context, int, int, int) (*model.Case, error) {
	return nil, errDiskGone
}
func (brokenRepo) UpdateFields(context.Context, string, model.CaseFields, string, time.Time) (*model.Case, error) {
	return nil, errDiskGone
}
func (brokenRepo) Update(context.Context, string, repo.MutateFunc) (*model.Case, error) {
	return nil, errDiskGone
}
func (brokenRepo) Delete(context.Context, string) (bool, error) { return false, errDiskGone }
func (brokenRepo) Close() error                                 { return nil }

var _ repo.CaseRepository = brokenRepo{}

func TestCaseHandlers_StorageFaultIsGeneric500(t *testing.T) {
	router := newCaseTestRouter(t, brokenRepo{}, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cases"},
		{http.MethodGet, "/api/cases/x"},
		{http.MethodDelete, "/api/cases/x"},
	} {
		rr := doJSON(t, router, tc.method, tc.path, nil, admin)
		assert.Equal(t, http.StatusInternalServerError, rr.Code, tc.path)
		msg := messageOf(t, rr)
		assert.Equal(t, "internal error", msg)
		assert.False(t, strings.Contains(msg, "disk"))
	}
}

func TestHandler_HealthAndStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>cases</h1>"), 0o644))
	router := newCaseTestRouter(t, repo.NewMemoryCaseRepository(), &config.Config{StaticDir: dir})

	rr := doJSON(t, router, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "cases")

	// no admin secret configured: the gate is open
	rr = doJSON(t, router, http.MethodPut, "/api/cases/none", map[string]any{"shelf_no": 1}, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_CORS(t *testing.T) {
	router := newCaseTestRouter(t, repo.NewMemoryCaseRepository(), &config.Config{AdminPassword: testAdminSecret, CORSOrigins: "*"})

	req := httptest.NewRequest(http.MethodOptions, "/api/cases", nil)
	req.Header.Set("Origin", "https://front.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "X-Admin-Password, X-Actor-Name")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = doJSON(t, router, http.MethodGet, "/api/cases", nil, map[string]string{"Origin": "https://front.example.org"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	// the admin gate still applies to cross-origin writes
	rr = doJSON(t, router, http.MethodDelete, "/api/cases/x", nil, map[string]string{"Origin": "https://front.example.org"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
