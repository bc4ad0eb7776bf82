package whatsapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiURL string) *Client {
	return NewClient(Config{
		APIURL:        apiURL,
		AccessToken:   "test-token",
		PhoneNumberID: "123456789",
	})
}

func TestSendText(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/123456789/messages", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "whatsapp", req["messaging_product"])
			assert.Equal(t, "919876543210", req["to"])
			assert.Equal(t, "text", req["type"])

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"messages":[{"id":"wamid.abc123"}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		msgID, err := client.SendText("919876543210", "Your booking is on hold")
		require.NoError(t, err)
		assert.Equal(t, "wamid.abc123", msgID)
	})

	t.Run("Provider Rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"Invalid recipient","type":"OAuthException","code":131026}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.SendText("bad", "hello")
		require.Error(t, err)

		var sendErr *SendError
		require.ErrorAs(t, err, &sendErr)
		assert.Equal(t, http.StatusBadRequest, sendErr.StatusCode)
		assert.Equal(t, 131026, sendErr.Code)
		assert.Contains(t, sendErr.Message, "Invalid recipient")
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		client := NewClient(Config{APIURL: "https://example.invalid"})
		_, err := client.SendText("919876543210", "hello")
		assert.ErrorIs(t, err, ErrMissingCredentials)
	})
}

func TestGetMediaURL(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/media-42", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"url":"https://lookaside.example/media/42","mime_type":"image/jpeg"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		url, err := client.GetMediaURL("media-42")
		require.NoError(t, err)
		assert.Equal(t, "https://lookaside.example/media/42", url)
	})

	t.Run("Not Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"message":"Media not found","code":100}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.GetMediaURL("missing")
		var sendErr *SendError
		require.ErrorAs(t, err, &sendErr)
		assert.Equal(t, http.StatusNotFound, sendErr.StatusCode)
	})
}
