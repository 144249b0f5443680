package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

func TestSendMessagePostsToChat(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":1700000000,"chat":{"id":-100123,"type":"group"},"text":"Release v1.0.1"}}`))
	}))
	defer srv.Close()

	bot, err := telebot.NewBot(telebot.Settings{
		URL:     srv.URL,
		Token:   "123:abc",
		Offline: true,
		Client:  newHTTPClient(time.Second),
	})
	require.NoError(t, err)

	adapter := NewTelebotAdapter(bot)
	require.NoError(t, adapter.SendMessage(-100123, "Release v1.0.1", nil))

	assert.True(t, strings.HasSuffix(gotPath, "/sendMessage"), "path %s", gotPath)
	assert.Equal(t, "Release v1.0.1", gotBody["text"])
	assert.Equal(t, "-100123", gotBody["chat_id"])
}

func TestNewBotOffline(t *testing.T) {
	bot, err := NewBot("123:abc", 0)
	require.NoError(t, err)
	assert.NotNil(t, bot)
}
