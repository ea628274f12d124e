package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsMessageArray(t *testing.T) {
	var received []map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Write([]byte(`{"data":[{"status":"ok","id":"ticket-1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	data := map[string]string{"type": "friend_request", "requestId": "a_b", "fromUserId": "a"}
	tickets, err := client.Send(context.Background(), []Message{NewMessage("ExponentPushToken[x]", "Hi", "Body", data)})

	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "ticket-1", tickets[0].ID)

	require.Len(t, received, 1)
	msg := received[0]
	assert.Equal(t, "ExponentPushToken[x]", msg["to"])
	assert.Equal(t, "default", msg["sound"])
	assert.Equal(t, "high", msg["priority"])
	assert.Equal(t, "default", msg["channelId"])
	assert.Equal(t, "a_b", msg["data"].(map[string]interface{})["requestId"])
}

func TestSendReportsTicketErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"status":"error","message":"DeviceNotRegistered"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Send(context.Background(), []Message{NewMessage("t", "a", "b", nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeviceNotRegistered")
}

func TestSendReportsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Send(context.Background(), []Message{NewMessage("t", "a", "b", nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSendReportsRequestLevelErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"code":"VALIDATION_ERROR","message":"bad token"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Send(context.Background(), []Message{NewMessage("t", "a", "b", nil)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VALIDATION_ERROR")
}

func TestSendSurfacesUnregisteredDevices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}},{"status":"ok","id":"x"}]}`))
	}))
	defer srv.Close()

	tickets, err := NewClient(srv.URL, time.Second).Send(context.Background(), []Message{NewMessage("a", "t", "b", nil), NewMessage("b", "t", "b", nil)})
	require.Error(t, err)
	require.Len(t, tickets, 2)
	assert.True(t, tickets[0].DeviceNotRegistered())
	assert.False(t, tickets[1].DeviceNotRegistered())
}
