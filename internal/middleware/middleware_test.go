package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"munidenuncia/internal/models"
	"munidenuncia/internal/utils"
)

const secret = "test-secret"

func whoami(w http.ResponseWriter, r *http.Request) {
	uid, _ := utils.GetString(r.Context(), CtxUserID)
	role, _ := utils.GetString(r.Context(), CtxRole)
	utils.JSON(w, http.StatusOK, map[string]string{"uid": uid, "role": role})
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.SignJWT(secret, models.User{ID: "u1", Email: "a@b.cl", Role: role}, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestWithAuth_CookieAndBearer(t *testing.T) {
	h := WithAuth(zerolog.Nop(), secret)(http.HandlerFunc(whoami))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token(t, models.RoleCitizen)})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uid":"u1","role":"citizen"}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.RoleAgent))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"uid":"u1","role":"agent"}`, rec.Body.String())
}

func TestWithAuth_BadTokenClearsCookie(t *testing.T) {
	h := WithAuth(zerolog.Nop(), secret)(http.HandlerFunc(whoami))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.JSONEq(t, `{"uid":"","role":""}`, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestRequireAuthAndRoles(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	chain := WithAuth(zerolog.Nop(), secret)(RequireAuth(RequireRoles(models.RoleAgent)(ok)))

	cases := []struct {
		role string
		want int
	}{
		{"", http.StatusUnauthorized},
		{models.RoleCitizen, http.StatusForbidden},
		{models.RoleAgent, http.StatusNoContent},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if c.role != "" {
			req.Header.Set("Authorization", "Bearer "+token(t, c.role))
		}
		rec := httptest.NewRecorder()
		chain.ServeHTTP(rec, req)
		assert.Equal(t, c.want, rec.Code, c.role)
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
