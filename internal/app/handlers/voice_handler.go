package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/voice"
	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/app/observability/metrics"
)

// maxClipBytes caps uploaded audio at roughly one minute of 16 kHz PCM WAV.
const maxClipBytes = 4 << 20

// VoiceHandler turns uploaded audio clips into transcripts.
type VoiceHandler struct {
	logger *zap.Logger
	voice  voice.Service
}

func NewVoiceHandler(voiceSvc voice.Service, logger *zap.Logger) *VoiceHandler {
	return &VoiceHandler{logger: logger, voice: voiceSvc}
}

// Transcribe accepts a WAV clip as multipart field "audio" or as the raw
// request body.
func (h *VoiceHandler) Transcribe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	wav, err := h.readClip(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio clip is required"})
		return
	}

	start := time.Now()
	transcript, err := h.voice.TranscribeWAV(c.Request.Context(), userID, wav)
	metrics.ASRSessionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoSpeech):
			metrics.ASRSessionsTotal.WithLabelValues("no_speech").Inc()
		default:
			metrics.ASRSessionsTotal.WithLabelValues("error").Inc()
		}
		respondError(c, err)
		return
	}

	metrics.ASRSessionsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"transcript": transcript})
}

func (h *VoiceHandler) readClip(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("audio"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxClipBytes))
	}

	wav, err := io.ReadAll(io.LimitReader(c.Request.Body, maxClipBytes))
	if err != nil || len(wav) == 0 {
		return nil, errors.New("empty audio body")
	}
	return wav, nil
}
