package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleExchangeAndProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "ya29", "token_type": "Bearer", "expires_in": 3599})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ya29", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "1049", "email": "ada@example.com", "name": "Ada"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogleProvider("id", "secret", "http://localhost/cb")
	g.endpoints = endpoints{auth: srv.URL + "/auth", token: srv.URL + "/token", profile: srv.URL + "/userinfo"}
	g.httpClient = srv.Client()

	tokens, err := g.ExchangeCode(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, 3599, tokens.ExpiresIn)

	profile, err := g.GetUserProfile(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "google", profile.Provider)
	assert.Equal(t, "1049", profile.ProviderID)
	assert.Equal(t, "ada", profile.Username)
}

func TestGoogleTokenError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer srv.Close()

	g := NewGoogleProvider("id", "secret", "http://localhost/cb")
	g.endpoints.token = srv.URL
	g.httpClient = srv.Client()

	_, err := g.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "ada", emailLocalPart("ada@example.com"))
	assert.Equal(t, "", emailLocalPart(""))
	assert.Equal(t, "", emailLocalPart("no-at-sign"))
}
