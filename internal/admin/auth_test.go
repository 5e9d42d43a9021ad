package admin_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qualclamps/storefront/internal/admin"
)

func newAuth(t *testing.T) admin.Auth {
	t.Helper()
	hash, err := admin.HashPassword("s3cret")
	require.NoError(t, err)
	return admin.Auth{
		Username:     "admin",
		PasswordHash: hash,
		Secret:       []byte("0123456789abcdef0123456789abcdef"),
		TokenTTL:     time.Hour,
	}
}

func TestLoginAndVerify(t *testing.T) {
	t.Parallel()
	auth := newAuth(t)

	token, expires, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	subject, err := auth.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "admin", subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	auth := newAuth(t)

	_, _, err := auth.Login("admin", "wrong")
	require.ErrorIs(t, err, admin.ErrInvalidCredentials)
	_, _, err = auth.Login("root", "s3cret")
	require.ErrorIs(t, err, admin.ErrInvalidCredentials)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	auth := newAuth(t)
	auth.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := auth.Login("admin", "s3cret")
	require.NoError(t, err)

	auth.Now = nil
	_, err = auth.VerifyToken(token)
	require.ErrorIs(t, err, admin.ErrInvalidToken)
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	t.Parallel()
	auth := newAuth(t)
	other := newAuth(t)
	other.Secret = []byte("ffffffffffffffffffffffffffffffff")

	token, _, err := other.Login("admin", "s3cret")
	require.NoError(t, err)
	_, err = auth.VerifyToken(token)
	require.ErrorIs(t, err, admin.ErrInvalidToken)
}

func TestRequireAdminMiddleware(t *testing.T) {
	t.Parallel()
	auth := newAuth(t)
	h := admin.Handlers{Auth: auth}

	protected := h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "s3cret"})
	rec = httptest.NewRecorder()
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
