package lifecycle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"itinventory/internal/docstore"
	"itinventory/internal/i18n"
	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/metrics"
	"itinventory/internal/session"
	"itinventory/pkg/auditlog"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noRevocations struct{}

func (noRevocations) IsRevoked(context.Context, string) (bool, error) { return false, nil }

type handlerFixture struct {
	router *gin.Engine
	token  string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := security.NewTokenManager("handler-secret", time.Hour)
	require.NoError(t, err)
	token, _, err := tokens.Issue(models.Principal{ID: "9", Email: "desk@example.com", Role: "user"})
	require.NoError(t, err)

	manager := session.NewManager(docstore.NewMemoryStore(), zap.NewNop())
	audit := auditlog.NewAuditLog(nil, metrics.New(nil), zap.NewNop())
	service := NewService(inventorylog.NewInventoryLog(audit), i18n.Default(), metrics.New(nil), zap.NewNop())

	router := gin.New()
	api := router.Group("/api", security.JWTMiddleware(tokens, noRevocations{}), manager.Middleware())
	NewHandler(service, i18n.Default()).RegisterRoutes(api.Group("/equipment"))

	return &handlerFixture{router: router, token: token}
}

func (f *handlerFixture) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestHandlerAddMasterItem(t *testing.T) {
	f := newHandlerFixture(t)

	w, body := f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":"Dell 3420","category":"laptop","price":1200}`,
		map[string]string{"Accept-Language": "vi-VN,vi;q=0.9"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "master_item_added", body["messageKey"])
	assert.NotEqual(t, "master_item_added", body["message"])

	items := body["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "master", item["status"])
	assert.NotEmpty(t, item["id"])
	assert.NotEmpty(t, item["conditionText"])

	w, body = f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":"dell 3420","category":"laptop"}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", body["code"])
}

func TestHandlerValidationAndTransitionErrors(t *testing.T) {
	f := newHandlerFixture(t)

	w, body := f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":"","category":"laptop"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", body["code"])
	assert.Contains(t, body["details"], "name")

	w, _ = f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body = f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":"Dell 3420","category":"laptop"}`, nil)
	id := body["items"].([]any)[0].(map[string]any)["id"].(string)

	w, body = f.do(t, http.MethodPost, "/api/equipment/inventory/"+id+"/allocate", `{"recipientName":"A","department":"B"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "illegal_transition", body["code"])

	w, _ = f.do(t, http.MethodDelete, "/api/equipment/inventory/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlerOptionalBody(t *testing.T) {
	f := newHandlerFixture(t)

	_, body := f.do(t, http.MethodPost, "/api/equipment/inventory/legacy", `{"name":"HP 400","category":"pc","quantity":1,"serials":"HP-1"}`, nil)
	var unitID string
	for _, raw := range body["items"].([]any) {
		item := raw.(map[string]any)
		if item["status"] == "available" {
			unitID = item["id"].(string)
		}
	}
	require.NotEmpty(t, unitID)

	w, _ := f.do(t, http.MethodPost, "/api/equipment/inventory/"+unitID+"/allocate", `{"recipientName":"A","department":"IT"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/equipment/inventory/"+unitID+"/damaged", `{"note":"fan noise"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body = f.do(t, http.MethodPost, "/api/equipment/inventory/"+unitID+"/repair", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Repaired: fan noise", item["conditionText"])
}

func TestHandlerRequiresToken(t *testing.T) {
	f := newHandlerFixture(t)
	f.token = ""

	w, _ := f.do(t, http.MethodPost, "/api/equipment/masters", `{"name":"Dell 3420","category":"laptop"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
