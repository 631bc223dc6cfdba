package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/assinei/assinei-backend/internal/config"
	"github.com/assinei/assinei-backend/internal/models"
	"github.com/assinei/assinei-backend/internal/sessions"
	"github.com/assinei/assinei-backend/internal/tokens"
	"github.com/assinei/assinei-backend/internal/users"
)

func newAuthTestServer(t *testing.T) (*gin.Engine, *users.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-handler-test-secret-32-bytes-"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 7 * 24 * time.Hour

	usersSvc := users.NewService(users.NewMemoryRepository())
	sessionsSvc := sessions.NewService(sessions.NewRedisRepository(client, "test:refresh:"))

	r := gin.New()
	h := NewAuthHandler(cfg, usersSvc, sessionsSvc)
	// admin guard stub: the real router wires middleware.RequireAdmin
	h.Register(r.Group(""), func(c *gin.Context) { c.Next() })
	return r, usersSvc
}

func postJSON(r *gin.Engine, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUser(t *testing.T, svc *users.Service) {
	t.Helper()
	_, err := svc.Create(context.Background(), users.CreateInput{
		Name:     "Ana Souza",
		Email:    "ana@empresa.com",
		Password: "senhaforte1",
	})
	require.NoError(t, err)
}

func TestLogin_Success(t *testing.T) {
	r, usersSvc := newAuthTestServer(t)
	seedUser(t, usersSvc)

	w := postJSON(r, "/auth/login", map[string]string{"email": "ana@empresa.com", "password": "senhaforte1"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "ana@empresa.com", resp.User.Email)
	require.NotContains(t, w.Body.String(), "passwordHash", "hash never leaves the server")
}

func TestLogin_WrongPassword(t *testing.T) {
	r, usersSvc := newAuthTestServer(t)
	seedUser(t, usersSvc)

	w := postJSON(r, "/auth/login", map[string]string{"email": "ana@empresa.com", "password": "errada"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = postJSON(r, "/auth/login", map[string]string{"email": "ghost@empresa.com", "password": "x"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	r, usersSvc := newAuthTestServer(t)
	seedUser(t, usersSvc)

	w := postJSON(r, "/auth/login", map[string]string{"email": "ana@empresa.com", "password": "senhaforte1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = postJSON(r, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// the rotated-out token is dead
	w = postJSON(r, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_InvalidatesSession(t *testing.T) {
	r, usersSvc := newAuthTestServer(t)
	seedUser(t, usersSvc)

	w := postJSON(r, "/auth/login", map[string]string{"email": "ana@empresa.com", "password": "senhaforte1"}, nil)
	var login struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = postJSON(r, "/auth/logout", map[string]string{"refreshToken": login.RefreshToken},
		map[string]string{"Authorization": "Bearer " + login.AccessToken})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(r, "/auth/refresh", map[string]string{"refreshToken": login.RefreshToken}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterUser(t *testing.T) {
	r, _ := newAuthTestServer(t)

	w := postJSON(r, "/auth/register", users.CreateInput{
		Name:     "Novo Usuario",
		Email:    "novo@empresa.com",
		Password: "senhaforte2",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// duplicate email conflicts
	w = postJSON(r, "/auth/register", users.CreateInput{
		Name:     "Duplicado",
		Email:    "novo@empresa.com",
		Password: "senhaforte3",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAccessTokenCarriesIdentity(t *testing.T) {
	r, usersSvc := newAuthTestServer(t)
	seedUser(t, usersSvc)

	w := postJSON(r, "/auth/login", map[string]string{"email": "ana@empresa.com", "password": "senhaforte1"}, nil)
	var login struct {
		AccessToken string `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-handler-test-secret-32-bytes-"
	claims, err := tokens.ParseAccessToken(cfg, login.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "ana@empresa.com", claims["email"])
	require.Equal(t, models.RoleUser, claims["role"])
}
