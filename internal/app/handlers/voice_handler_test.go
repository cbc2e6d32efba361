package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/models"
)

type MockVoiceService struct {
	mock.Mock
}

func (m *MockVoiceService) TranscribeWAV(ctx context.Context, userID uuid.UUID, wav []byte) (string, error) {
	args := m.Called(ctx, userID, wav)
	return args.String(0), args.Error(1)
}

func voiceTestRouter(userID uuid.UUID, h *VoiceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/voice/transcribe", asUser(userID), h.Transcribe)
	return r
}

func TestTranscribe_RawBody(t *testing.T) {
	userID := uuid.New()
	clip := []byte("RIFFfakewavdata")
	svc := new(MockVoiceService)
	svc.On("TranscribeWAV", mock.Anything, userID, clip).Return("我想去北京玩三天", nil)

	h := NewVoiceHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", bytes.NewReader(clip))
	voiceTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "我想去北京玩三天")
	svc.AssertExpectations(t)
}

func TestTranscribe_MultipartField(t *testing.T) {
	userID := uuid.New()
	clip := []byte("RIFFfakewavdata")
	svc := new(MockVoiceService)
	svc.On("TranscribeWAV", mock.Anything, userID, clip).Return("ok", nil)

	h := NewVoiceHandler(svc, zap.NewNop())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", "clip.wav")
	require.NoError(t, err)
	_, err = part.Write(clip)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	voiceTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestTranscribe_EmptyBody(t *testing.T) {
	h := NewVoiceHandler(new(MockVoiceService), zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", nil)
	voiceTestRouter(uuid.New(), h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTranscribe_NoSpeechMapsTo422(t *testing.T) {
	userID := uuid.New()
	svc := new(MockVoiceService)
	svc.On("TranscribeWAV", mock.Anything, userID, mock.Anything).Return("", models.ErrNoSpeech)

	h := NewVoiceHandler(svc, zap.NewNop())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", bytes.NewBufferString("silence"))
	voiceTestRouter(userID, h).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
