package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/assinei/assinei-backend/internal/document"
	"github.com/assinei/assinei-backend/internal/document/repository"
	"github.com/assinei/assinei-backend/internal/document/service"
	"github.com/assinei/assinei-backend/internal/models"
)

// asUser injects verified claims the way the auth middleware would.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": userID, "role": role})
		c.Next()
	}
}

func newTestRouter(t *testing.T) (*gin.Engine, *service.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	eng := service.NewEngine(repository.NewMemoryRepo(), nil, nil, nil)
	r := gin.New()
	h := New(eng, nil)
	// each test picks its identity via the X-Test-User/X-Test-Role headers
	api := r.Group("/api", func(c *gin.Context) {
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			role = models.RoleUser
		}
		asUser(c.GetHeader("X-Test-User"), role)(c)
	})
	h.RegisterDocumentRoutes(api)
	return r, eng
}

func do(r *gin.Engine, method, path, user, role string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createDoc(t *testing.T, r *gin.Engine, owner string, signatories []map[string]any) document.Document {
	t.Helper()
	w := do(r, http.MethodPost, "/api/documents", owner, "", map[string]any{
		"title":       "Contrato de Prestacao",
		"signatories": signatories,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	return doc
}

func TestCreateAndGetDocument(t *testing.T) {
	r, _ := newTestRouter(t)

	doc := createDoc(t, r, "owner", []map[string]any{
		{"userId": "u1", "order": 1},
		{"userId": "u2", "order": 2},
	})
	require.Equal(t, document.StatusSigning, doc.Status)
	require.Len(t, doc.Signatories, 2)

	w := do(r, http.MethodGet, "/api/documents/"+doc.ID, "owner", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// signatories may view, strangers may not
	w = do(r, http.MethodGet, "/api/documents/"+doc.ID, "u1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/documents/"+doc.ID, "intruso", "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateWithoutTitle(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/api/documents", "owner", "", map[string]any{"description": "sem titulo"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignFlowOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", []map[string]any{
		{"userId": "u1", "order": 1},
		{"userId": "u2", "order": 2},
	})

	// u2 is not in the current tier yet
	w := do(r, http.MethodPost, "/api/documents/"+doc.ID+"/sign", "u2", "", map[string]any{"data": "assinatura-u2"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/sign", "u1", "", map[string]any{"data": "assinatura-u1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/sign", "u2", "", map[string]any{"data": "assinatura-u2"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/api/documents/"+doc.ID, "owner", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, document.StatusCompleted, got.Status)

	w = do(r, http.MethodGet, "/api/documents/"+doc.ID+"/signatures", "owner", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sigs []document.Signature
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sigs))
	require.Len(t, sigs, 2)
}

func TestRejectOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", []map[string]any{{"userId": "u1", "order": 1}})

	// reason is mandatory
	w := do(r, http.MethodPost, "/api/documents/"+doc.ID+"/reject", "u1", "", map[string]any{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/reject", "u1", "", map[string]any{"reason": "dados incorretos"})
	require.Equal(t, http.StatusNoContent, w.Code)

	// terminal: nothing else can happen
	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/sign", "u1", "", map[string]any{"data": "x"})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCancelOverHTTP(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", []map[string]any{{"userId": "u1", "order": 1}})

	// only the owner or an admin may cancel
	w := do(r, http.MethodPost, "/api/documents/"+doc.ID+"/cancel", "u1", "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/cancel", "owner", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodPost, "/api/documents/"+doc.ID+"/cancel", "owner", "", nil)
	require.Equal(t, http.StatusConflict, w.Code, "cancel is not idempotent once terminal")
}

func TestUpdateStatusRules(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", []map[string]any{{"userId": "u1", "order": 1}})

	// direct status writes are rejected for regular users
	w := do(r, http.MethodPatch, "/api/documents/"+doc.ID, "owner", "", map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusConflict, w.Code)

	// CANCELED routes through the cancellation rule
	w = do(r, http.MethodPatch, "/api/documents/"+doc.ID, "owner", "", map[string]any{"status": "CANCELED"})
	require.Equal(t, http.StatusOK, w.Code)

	// admin override is explicit: query flag plus admin role
	doc2 := createDoc(t, r, "owner", []map[string]any{{"userId": "u1", "order": 1}})
	w = do(r, http.MethodPatch, "/api/documents/"+doc2.ID+"?override=true", "root", models.RoleAdmin, map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestDeleteDocument(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", nil)

	w := do(r, http.MethodDelete, "/api/documents/"+doc.ID, "intruso", "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodDelete, "/api/documents/"+doc.ID, "owner", "", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/api/documents/"+doc.ID, "owner", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListScopedToUser(t *testing.T) {
	r, _ := newTestRouter(t)
	createDoc(t, r, "alice", nil)
	createDoc(t, r, "bob", []map[string]any{{"userId": "alice", "order": 1}})
	createDoc(t, r, "carol", nil)

	w := do(r, http.MethodGet, "/api/documents", "alice", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var docs []document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 2, "owned plus assigned")

	w = do(r, http.MethodGet, "/api/documents", "root", models.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 3, "admin sees everything")
}

func TestDownloadWithoutFile(t *testing.T) {
	r, _ := newTestRouter(t)
	doc := createDoc(t, r, "owner", nil)
	w := do(r, http.MethodGet, "/api/documents/"+doc.ID+"/download", "owner", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
