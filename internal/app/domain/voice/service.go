package voice

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var _ Service = (*ServiceImpl)(nil)

// CredentialSource resolves the recognizer keys for a user.
type CredentialSource interface {
	VoiceCredentials(ctx context.Context, userID uuid.UUID) (Credentials, error)
}

// Transcriber runs one recognition exchange.
type Transcriber interface {
	Transcribe(ctx context.Context, creds Credentials, pcm []byte) (string, error)
}

// Service turns uploaded audio clips into transcripts.
type Service interface {
	TranscribeWAV(ctx context.Context, userID uuid.UUID, wav []byte) (string, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	creds   CredentialSource
	session Transcriber
}

func NewServiceImpl(creds CredentialSource, session Transcriber, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		creds:   creds,
		session: session,
	}
}

// TranscribeWAV converts the clip to raw PCM and streams it through one
// recognition session.
func (s *ServiceImpl) TranscribeWAV(ctx context.Context, userID uuid.UUID, wav []byte) (string, error) {
	l := s.logger.With(zap.String("method", "TranscribeWAV"), zap.String("userID", userID.String()))

	creds, err := s.creds.VoiceCredentials(ctx, userID)
	if err != nil {
		return "", err
	}

	pcm, err := ConvertToPCM(wav)
	if err != nil {
		l.Warn("Audio conversion failed", zap.Error(err))
		return "", err
	}

	transcript, err := s.session.Transcribe(ctx, creds, pcm)
	if err != nil {
		return "", err
	}

	l.Info("Clip transcribed", zap.Int("chars", len([]rune(transcript))))
	return transcript, nil
}
