package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itamarw/gosurf-bot/internal/bot"
)

const textNotification = `{
  "entry": [{
    "changes": [{
      "value": {
        "messages": [{
          "from": "972501234567",
          "type": "text",
          "text": {"body": "שדות ים"}
        }]
      }
    }]
  }]
}`

func TestDecodeEventTextMessage(t *testing.T) {
	t.Parallel()

	event, err := DecodeEvent([]byte(textNotification))
	require.NoError(t, err)
	require.True(t, event.IsText())
	require.Equal(t, "972501234567", event.FromPhone)
	require.Equal(t, "שדות ים", event.Text)
}

func TestDecodeEventNonText(t *testing.T) {
	t.Parallel()

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"972501234567","type":"image"}]}}]}]}`
	event, err := DecodeEvent([]byte(body))
	require.NoError(t, err)
	require.False(t, event.IsText())
}

func TestDecodeEventMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"empty object", "{}"},
		{"empty entry", `{"entry":[]}`},
		{"no messages", `{"entry":[{"changes":[{"value":{}}]}]}`},
		{"no sender", `{"entry":[{"changes":[{"value":{"messages":[{"type":"text"}]}}]}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := DecodeEvent([]byte(tc.body))
			require.ErrorIs(t, err, bot.ErrMalformedPayload)
		})
	}
}

func TestSendTextPostsGraphPayload(t *testing.T) {
	t.Parallel()

	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/12345/messages", r.URL.Path)
		require.Equal(t, "Bearer token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		BaseURL:       srv.URL,
		APIToken:      "token",
		PhoneNumberID: "12345",
	}, zap.NewNop())

	err := client.SendText(context.Background(), "972501234567", "התחזית בדרך")
	require.NoError(t, err)
	require.Equal(t, "whatsapp", got.MessagingProduct)
	require.Equal(t, "972501234567", got.To)
	require.Equal(t, "text", got.Type)
	require.Equal(t, "התחזית בדרך", got.Text.Body)
}

func TestSendTextNon2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, PhoneNumberID: "12345"}, zap.NewNop())
	err := client.SendText(context.Background(), "972501234567", "hi")
	require.Error(t, err)
	require.Contains(t, err.Error(), "429")
}
