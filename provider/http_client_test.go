package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderHTTPClient_SendForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/odeme/api/get-token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "StorePay/1.0", r.Header.Get("User-Agent"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Kulaklık & Kablo", r.PostForm.Get("user_name"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":"success","token":"abc"}`)
	}))
	defer server.Close()

	client := NewProviderHTTPClient(&HTTPClientConfig{
		Provider:       "paytr",
		BaseURL:        server.URL + "/",
		DefaultHeaders: map[string]string{"User-Agent": "StorePay/1.0"},
	})

	resp, err := client.SendForm(context.Background(), &HTTPRequest{
		Endpoint: "/odeme/api/get-token",
		FormData: url.Values{"user_name": {"Kulaklık & Kablo"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, client.ParseJSONResponse(resp, &body))
	assert.Equal(t, "abc", body["token"])
}

func TestProviderHTTPClient_SendJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "IYZWSv2 abc", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "tr", payload["locale"])

		_, _ = io.WriteString(w, `{"status":"success"}`)
	}))
	defer server.Close()

	client := NewProviderHTTPClient(&HTTPClientConfig{Provider: "iyzico", BaseURL: server.URL})
	_, err := client.SendJSON(context.Background(), &HTTPRequest{
		Endpoint: "payment/iyzipos/checkoutform/initialize/auth/ecom",
		Headers:  map[string]string{"Authorization": "IYZWSv2 abc"},
		Body:     map[string]string{"locale": "tr"},
	})
	require.NoError(t, err)
}

func TestProviderHTTPClient_Errors(t *testing.T) {
	t.Run("http_status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		}))
		defer server.Close()

		client := NewProviderHTTPClient(&HTTPClientConfig{Provider: "paytr", BaseURL: server.URL})
		resp, err := client.SendForm(context.Background(), &HTTPRequest{Endpoint: "/x"})

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
		assert.Equal(t, "paytr", transportErr.Provider)
		require.NotNil(t, resp)
		assert.Equal(t, KindTransport, KindOf(err))
	})

	t.Run("invalid_json", func(t *testing.T) {
		client := NewProviderHTTPClient(&HTTPClientConfig{Provider: "paytr"})
		err := client.ParseJSONResponse(&HTTPResponse{StatusCode: 200, Body: []byte("<html>")}, &map[string]any{})

		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()
		// runs before server.Close so the blocked handler returns
		defer close(release)

		client := NewProviderHTTPClient(&HTTPClientConfig{Provider: "iyzico", BaseURL: server.URL, Timeout: 50 * time.Millisecond})

		start := time.Now()
		_, err := client.SendJSON(context.Background(), &HTTPRequest{Endpoint: "/slow", Body: map[string]string{}})

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, "iyzico", transportErr.Provider)
		assert.Equal(t, KindTransport, KindOf(err))
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("canceled_context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := NewProviderHTTPClient(&HTTPClientConfig{Provider: "iyzico", BaseURL: "http://127.0.0.1:1"})
		_, err := client.SendForm(ctx, &HTTPRequest{Endpoint: "/"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://a/b", joinURL("https://a/", "/b"))
	assert.Equal(t, "https://a/b", joinURL("https://a", "b"))
	assert.Equal(t, "https://a/b", joinURL("https://a", "/b"))
}
