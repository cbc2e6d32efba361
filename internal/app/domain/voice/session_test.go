package voice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

var testCreds = Credentials{AppID: "app123", APIKey: "key", APISecret: "secret"}

// asrServer runs a fake recognizer endpoint for one connection.
func asrServer(t *testing.T, handler func(t *testing.T, conn *websocket.Conn, r *http.Request)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(t, conn, r)
	}))
}

func newTestSession(srv *httptest.Server) *Session {
	host := strings.TrimPrefix(srv.URL, "http://")
	return NewSession(zap.NewNop(),
		WithEndpoint("ws", host),
		WithFrameInterval(time.Millisecond),
		WithTimeout(3*time.Second),
	)
}

// drainAudio reads client frames until the end-of-stream marker.
func drainAudio(t *testing.T, conn *websocket.Conn) (first map[string]any) {
	t.Helper()
	for {
		var frame map[string]any
		require.NoError(t, conn.ReadJSON(&frame))
		if first == nil {
			first = frame
		}
		data, _ := frame["data"].(map[string]any)
		if status, _ := data["status"].(float64); status == 2 {
			return first
		}
	}
}

func sendResult(t *testing.T, conn *websocket.Conn, sn int, pgs string, rg []int, text string, last bool) {
	t.Helper()
	type word struct {
		W string `json:"w"`
	}
	result := map[string]any{
		"sn": sn,
		"ls": last,
		"ws": []map[string]any{{"cw": []word{{W: text}}}},
	}
	if pgs != "" {
		result["pgs"] = pgs
	}
	if rg != nil {
		result["rg"] = rg
	}
	payload := map[string]any{
		"code": 0,
		"data": map[string]any{"status": 1, "result": result},
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, raw))
}

func TestTranscribe_HappyPath(t *testing.T) {
	srv := asrServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request) {
		// Handshake carries the signed auth parameters.
		q := r.URL.Query()
		assert.NotEmpty(t, q.Get("authorization"))
		assert.NotEmpty(t, q.Get("date"))

		first := drainAudio(t, conn)
		common, _ := first["common"].(map[string]any)
		assert.Equal(t, "app123", common["app_id"])
		business, _ := first["business"].(map[string]any)
		assert.Equal(t, "wpgs", business["dwa"])
		assert.Equal(t, "trip", business["pd"])
		data, _ := first["data"].(map[string]any)
		assert.Equal(t, float64(0), data["status"])
		assert.NotEmpty(t, data["audio"])

		sendResult(t, conn, 1, "apd", nil, "我想去北京", false)
		sendResult(t, conn, 2, "apd", nil, "玩三天", true)
	})
	defer srv.Close()

	session := newTestSession(srv)
	pcm := make([]byte, FrameSize*3)

	transcript, err := session.Transcribe(context.Background(), testCreds, pcm)

	require.NoError(t, err)
	assert.Equal(t, "我想去北京玩三天", transcript)
}

func TestTranscribe_DynamicCorrection(t *testing.T) {
	srv := asrServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request) {
		drainAudio(t, conn)
		sendResult(t, conn, 1, "apd", nil, "我想去", false)
		sendResult(t, conn, 2, "apd", nil, "背景", false)
		sendResult(t, conn, 3, "rpl", []int{2, 2}, "北京", true)
	})
	defer srv.Close()

	session := newTestSession(srv)

	transcript, err := session.Transcribe(context.Background(), testCreds, make([]byte, FrameSize))

	require.NoError(t, err)
	assert.Equal(t, "我想去北京", transcript)
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := asrServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request) {
		raw, _ := json.Marshal(map[string]any{"code": 10165, "message": "invalid appid"})
		conn.WriteMessage(websocket.TextMessage, raw)
	})
	defer srv.Close()

	session := newTestSession(srv)

	_, err := session.Transcribe(context.Background(), testCreds, make([]byte, FrameSize))

	assert.ErrorIs(t, err, models.ErrRecognition)
	assert.Contains(t, err.Error(), "invalid appid")
}

func TestTranscribe_NoSpeech(t *testing.T) {
	srv := asrServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request) {
		drainAudio(t, conn)
		sendResult(t, conn, 1, "apd", nil, "", true)
	})
	defer srv.Close()

	session := newTestSession(srv)

	_, err := session.Transcribe(context.Background(), testCreds, make([]byte, FrameSize))

	assert.ErrorIs(t, err, models.ErrNoSpeech)
}

func TestTranscribe_FinalStatusWithoutResult(t *testing.T) {
	srv := asrServer(t, func(t *testing.T, conn *websocket.Conn, r *http.Request) {
		drainAudio(t, conn)
		sendResult(t, conn, 1, "apd", nil, "你好", false)
		raw, _ := json.Marshal(map[string]any{"code": 0, "data": map[string]any{"status": 2}})
		conn.WriteMessage(websocket.TextMessage, raw)
	})
	defer srv.Close()

	session := newTestSession(srv)

	transcript, err := session.Transcribe(context.Background(), testCreds, make([]byte, FrameSize))

	require.NoError(t, err)
	assert.Equal(t, "你好", transcript)
}

func TestTranscribe_DialFailure(t *testing.T) {
	session := NewSession(zap.NewNop(),
		WithEndpoint("ws", "127.0.0.1:1"), // nothing listens here
		WithTimeout(time.Second),
	)

	_, err := session.Transcribe(context.Background(), testCreds, make([]byte, FrameSize))

	assert.ErrorIs(t, err, models.ErrTransport)
}

func TestTranscribe_EmptyAudio(t *testing.T) {
	session := NewSession(zap.NewNop())
	_, err := session.Transcribe(context.Background(), testCreds, nil)
	assert.ErrorIs(t, err, models.ErrBadRequest)
}
