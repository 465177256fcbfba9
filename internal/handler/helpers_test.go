package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"postocaixa/internal/model"
	"postocaixa/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret_32_chars_minimum!"

func init() { gin.SetMode(gin.TestMode) }

// ── stub usuario repo ───────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	mu    sync.Mutex
	users []*model.Usuario
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email {
			return repository.ErrDuplicado
		}
	}
	u.ID = int64(len(r.users) + 1)
	r.users = append(r.users, u)
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUsuarioRepo) FindByAuthID(_ context.Context, authID uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AuthID == authID {
			return u, nil
		}
	}
	return nil, nil
}

func (r *stubUsuarioRepo) FirstAdmin(context.Context) (*model.Usuario, error) { return nil, nil }
func (r *stubUsuarioRepo) First(context.Context) (*model.Usuario, error)      { return nil, nil }

// ── helpers ─────────────────────────────────────────────────────────────────

// signToken builds an access token shaped like the ones AuthService issues.
func signToken(t *testing.T, authID uuid.UUID, rol string, postoID *int64) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": authID.String(),
		"email":   "frentista@posto.com",
		"rol":     rol,
		"nome":    "Frentista Teste",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	if postoID != nil {
		claims["posto_id"] = *postoID
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

type requisicao struct {
	method string
	path   string
	body   interface{}
	token  string
	posto  string
}

func executar(t *testing.T, r *gin.Engine, req requisicao) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if req.body != nil {
		if s, ok := req.body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(req.body))
		}
	}
	httpReq := httptest.NewRequest(req.method, req.path, &buf)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	if req.posto != "" {
		httpReq.Header.Set("X-Posto-ID", req.posto)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decodificar(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), "body: %s", w.Body.String())
}

func ptr[T any](v T) *T { return &v }

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
