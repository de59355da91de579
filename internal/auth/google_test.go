package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGoogleServer(t *testing.T, userInfoStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-123", r.Header.Get("Authorization"))
		if userInfoStatus != http.StatusOK {
			w.WriteHeader(userInfoStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":   "1098",
			"email": "jiwoo@example.com",
			"name":  "Jiwoo",
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestGoogle(server *httptest.Server) *Google {
	return NewGoogle(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/auth/google/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   server.URL + "/auth",
			TokenURL:  server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoURL: server.URL + "/userinfo",
	})
}

func TestGoogle_AuthCodeURL(t *testing.T) {
	g := NewGoogle(GoogleConfig{ClientID: "client-id", RedirectURL: "http://localhost:8000/cb"})

	u, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "http://localhost:8000/cb", q.Get("redirect_uri"))
	assert.Equal(t, "code", q.Get("response_type"))
}

func TestGoogle_Exchange(t *testing.T) {
	server := newGoogleServer(t, http.StatusOK)
	g := newTestGoogle(server)

	info, err := g.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &UserInfo{Subject: "1098", Email: "jiwoo@example.com", Name: "Jiwoo"}, info)
}

func TestGoogle_ExchangeErrors(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		g := newTestGoogle(newGoogleServer(t, http.StatusOK))
		_, err := g.Exchange(context.Background(), "bad-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exchange authorization code")
	})

	t.Run("userinfo failure", func(t *testing.T) {
		g := newTestGoogle(newGoogleServer(t, http.StatusUnauthorized))
		_, err := g.Exchange(context.Background(), "good-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
	})
}

func TestNewState(t *testing.T) {
	a, b := NewState(), NewState()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
