package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	jwtAuth := New("secret")
	require.NotNil(t, jwtAuth)

	tok, err := NewToken(jwtAuth, time.Hour, "ops")
	require.NoError(t, err)

	sub, err := VerifyToken(jwtAuth, tok)
	require.NoError(t, err)
	assert.Equal(t, "ops", sub)

	expired, err := NewToken(jwtAuth, -time.Hour, "ops")
	require.NoError(t, err)
	_, err = VerifyToken(jwtAuth, expired)
	assert.Error(t, err)

	_, err = VerifyToken(New("other"), tok)
	assert.Error(t, err)
}

func TestNewWithoutSecret(t *testing.T) {
	assert.Nil(t, New(""))
}

func TestProtect(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	jwtAuth := New("secret")
	h := Protect(jwtAuth)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := NewToken(jwtAuth, time.Hour, "")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Protect(nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
