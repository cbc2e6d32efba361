package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

const (
	statusFirstFrame  = 0
	statusMiddleFrame = 1
	statusLastFrame   = 2

	defaultFrameInterval = 40 * time.Millisecond
	defaultTimeout       = 60 * time.Second
)

// Credentials are the per-user recognizer keys.
type Credentials struct {
	AppID     string
	APIKey    string
	APISecret string
}

// Session runs one streaming recognition exchange per finalized audio clip.
type Session struct {
	logger        *zap.Logger
	dialer        *websocket.Dialer
	scheme        string
	host          string
	frameInterval time.Duration
	timeout       time.Duration
	now           func() time.Time
}

type SessionOption func(*Session)

// WithEndpoint redirects the session to a different server, used by tests.
func WithEndpoint(scheme, host string) SessionOption {
	return func(s *Session) {
		s.scheme = scheme
		s.host = host
	}
}

func WithFrameInterval(d time.Duration) SessionOption {
	return func(s *Session) { s.frameInterval = d }
}

func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

func NewSession(logger *zap.Logger, opts ...SessionOption) *Session {
	s := &Session{
		logger:        logger,
		dialer:        websocket.DefaultDialer,
		scheme:        "wss",
		host:          defaultASRHost,
		frameInterval: defaultFrameInterval,
		timeout:       defaultTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type businessParams struct {
	Language string `json:"language"`
	Domain   string `json:"domain"`
	Accent   string `json:"accent"`
	VadEOS   int    `json:"vad_eos"`
	DWA      string `json:"dwa"`
	PD       string `json:"pd"`
	PTT      int    `json:"ptt"`
}

type audioData struct {
	Status   int    `json:"status"`
	Format   string `json:"format,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Audio    string `json:"audio,omitempty"`
}

type firstFrame struct {
	Common struct {
		AppID string `json:"app_id"`
	} `json:"common"`
	Business businessParams `json:"business"`
	Data     audioData      `json:"data"`
}

type audioFrame struct {
	Data audioData `json:"data"`
}

type serverResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Sid     string `json:"sid"`
	Data    *struct {
		Status int `json:"status"`
		Result *struct {
			SN  int    `json:"sn"`
			LS  bool   `json:"ls"`
			PGS string `json:"pgs"`
			RG  [2]int `json:"rg"`
			WS  []struct {
				CW []struct {
					W string `json:"w"`
				} `json:"cw"`
			} `json:"ws"`
		} `json:"result"`
	} `json:"data"`
}

// Transcribe streams the PCM clip to the recognizer and returns the final
// transcript. A clip the recognizer hears nothing in is ErrNoSpeech; provider
// rejections are ErrRecognition; connection problems are ErrTransport.
func (s *Session) Transcribe(ctx context.Context, creds Credentials, pcm []byte) (string, error) {
	l := s.logger.With(zap.String("method", "Transcribe"), zap.Int("pcm_bytes", len(pcm)))

	if len(pcm) == 0 {
		return "", fmt.Errorf("%w: empty audio", models.ErrBadRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	wsURL := HandshakeURL(s.scheme, s.host, creds.APIKey, creds.APISecret, s.now())
	conn, _, err := s.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		l.Error("Recognizer dial failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", models.ErrTransport, err)
	}
	defer conn.Close()

	frames := Frames(pcm)
	if err := s.sendFirstFrame(conn, creds.AppID, frames[0]); err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransport, err)
	}

	writeErr := make(chan error, 1)
	go s.streamFrames(ctx, conn, frames[1:], writeErr)

	transcript, err := s.readResults(ctx, conn, l)
	if err != nil {
		return "", err
	}

	select {
	case werr := <-writeErr:
		if werr != nil {
			l.Warn("Audio streaming ended early", zap.Error(werr))
		}
	default:
	}

	if transcript == "" {
		return "", models.ErrNoSpeech
	}
	l.Info("Transcription finished", zap.Int("chars", len([]rune(transcript))))
	return transcript, nil
}

func (s *Session) sendFirstFrame(conn *websocket.Conn, appID string, chunk []byte) error {
	frame := firstFrame{
		Business: businessParams{
			Language: "zh_cn",
			Domain:   "iat",
			Accent:   "mandarin",
			VadEOS:   3000,
			DWA:      "wpgs",
			PD:       "trip",
			PTT:      1,
		},
		Data: audioData{
			Status:   statusFirstFrame,
			Format:   "audio/L16;rate=16000",
			Encoding: "raw",
			Audio:    base64.StdEncoding.EncodeToString(chunk),
		},
	}
	frame.Common.AppID = appID
	return conn.WriteJSON(frame)
}

// streamFrames sends the remaining audio at the frame cadence, then the
// explicit end-of-stream frame.
func (s *Session) streamFrames(ctx context.Context, conn *websocket.Conn, frames [][]byte, done chan<- error) {
	ticker := time.NewTicker(s.frameInterval)
	defer ticker.Stop()

	for _, chunk := range frames {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
			return
		case <-ticker.C:
		}

		frame := audioFrame{Data: audioData{
			Status:   statusMiddleFrame,
			Format:   "audio/L16;rate=16000",
			Encoding: "raw",
			Audio:    base64.StdEncoding.EncodeToString(chunk),
		}}
		if err := conn.WriteJSON(frame); err != nil {
			done <- err
			return
		}
	}

	done <- conn.WriteJSON(audioFrame{Data: audioData{Status: statusLastFrame}})
}

func (s *Session) readResults(ctx context.Context, conn *websocket.Conn, l *zap.Logger) (string, error) {
	assembler := newTranscriptAssembler()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: recognition timed out", models.ErrTransport)
			}
			l.Error("Recognizer read failed", zap.Error(err))
			return "", fmt.Errorf("%w: %v", models.ErrTransport, err)
		}

		var resp serverResponse
		if err := json.Unmarshal(payload, &resp); err != nil {
			return "", fmt.Errorf("%w: undecodable server frame: %v", models.ErrRecognition, err)
		}

		if resp.Code != 0 {
			l.Warn("Recognizer rejected session",
				zap.Int("code", resp.Code),
				zap.String("message", resp.Message),
				zap.String("sid", resp.Sid),
			)
			return "", fmt.Errorf("%w: %s (code %d)", models.ErrRecognition, resp.Message, resp.Code)
		}
		if resp.Data == nil {
			continue
		}

		if r := resp.Data.Result; r != nil {
			var text string
			for _, ws := range r.WS {
				for _, cw := range ws.CW {
					text += cw.W
				}
			}
			assembler.Apply(r.SN, r.PGS, r.RG, text)

			if r.LS {
				return assembler.Text(), nil
			}
		}

		if resp.Data.Status == statusLastFrame {
			return assembler.Text(), nil
		}
	}
}
