package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppClient_Send(t *testing.T) {
	var gotAuth string
	var gotBody sendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"ok":   true,
			"meta": map[string]any{"message_id": "m1"},
		})
	}))
	defer server.Close()

	c := NewWhatsAppClient(server.URL, "secret-key")
	meta, err := c.Send(context.Background(), "manager", "hello")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "manager", gotBody.To)
	assert.Equal(t, "hello", gotBody.Message)
	assert.Equal(t, "m1", meta["message_id"])
}

func TestWhatsAppClient_Send_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewWhatsAppClient(server.URL, "wrong-key")
	_, err := c.Send(context.Background(), "manager", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestWhatsAppClient_Send_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "invalid recipient"})
	}))
	defer server.Close()

	c := NewWhatsAppClient(server.URL, "secret-key")
	_, err := c.Send(context.Background(), "", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}
