package apiconfig

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/voyago/internal/app/domain/voice"
	"github.com/voyago/voyago/internal/app/models"
	"github.com/voyago/voyago/internal/pkg/cache"
	"github.com/voyago/voyago/internal/pkg/config"
)

const credentialCacheTTL = 15 * time.Minute

var _ Service = (*ServiceImpl)(nil)

// Service manages per-user provider credentials and resolves them for the
// domain services. Secrets are base64-encoded at rest and only decoded here,
// at call time.
type Service interface {
	Upsert(ctx context.Context, userID uuid.UUID, cfg models.APIConfig) (*models.APIConfigStatus, error)
	Status(ctx context.Context, userID uuid.UUID) ([]models.APIConfigStatus, error)
	Delete(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) error

	LLMCredentials(ctx context.Context, userID uuid.UUID) (apiKey, baseURL, model string, err error)
	VoiceCredentials(ctx context.Context, userID uuid.UUID) (voice.Credentials, error)
	MapCredentials(ctx context.Context, userID uuid.UUID) (key, securityCode string, err error)
}

// InvalidateFunc runs after a user's config for a service type changes.
// The map surface registers one to tear itself down on key rotation.
type InvalidateFunc func(userID uuid.UUID, serviceType models.ServiceType)

type ServiceImpl struct {
	logger       *zap.Logger
	repo         Repository
	defaults     config.ProviderDefaults
	credCache    *cache.UnifiedCache[*models.APIConfig]
	onInvalidate []InvalidateFunc
}

func NewServiceImpl(repo Repository, defaults config.ProviderDefaults, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		defaults:  defaults,
		credCache: cache.NewUnifiedCache[*models.APIConfig](credentialCacheTTL, "api_configs", logger),
	}
}

// OnInvalidate registers a hook fired whenever a config changes or is
// removed.
func (s *ServiceImpl) OnInvalidate(fn InvalidateFunc) {
	s.onInvalidate = append(s.onInvalidate, fn)
}

func (s *ServiceImpl) Upsert(ctx context.Context, userID uuid.UUID, cfg models.APIConfig) (*models.APIConfigStatus, error) {
	l := s.logger.With(zap.String("method", "Upsert"), zap.String("serviceType", string(cfg.ServiceType)))

	if !cfg.ServiceType.Valid() {
		return nil, fmt.Errorf("unknown service type %q: %w", cfg.ServiceType, models.ErrValidation)
	}
	if err := validateForType(cfg); err != nil {
		return nil, err
	}

	cfg.UserID = userID
	cfg.APIKey = encode(cfg.APIKey)
	cfg.APISecret = encode(cfg.APISecret)
	cfg.SecurityCode = encode(cfg.SecurityCode)

	saved, err := s.repo.Upsert(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s.invalidate(userID, cfg.ServiceType)
	l.Info("Provider configuration updated", zap.String("userID", userID.String()))

	return &models.APIConfigStatus{
		ServiceType: saved.ServiceType,
		Configured:  true,
		Model:       saved.Model,
		UpdatedAt:   &saved.UpdatedAt,
	}, nil
}

// Status reports configured-or-not for every service type, never secrets.
func (s *ServiceImpl) Status(ctx context.Context, userID uuid.UUID) ([]models.APIConfigStatus, error) {
	configs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[models.ServiceType]models.APIConfig, len(configs))
	for _, c := range configs {
		byType[c.ServiceType] = c
	}

	out := make([]models.APIConfigStatus, 0, 3)
	for _, st := range []models.ServiceType{models.ServiceLLM, models.ServiceVoice, models.ServiceMap} {
		status := models.APIConfigStatus{ServiceType: st}
		if c, ok := byType[st]; ok {
			status.Configured = true
			status.Model = c.Model
			updated := c.UpdatedAt
			status.UpdatedAt = &updated
		}
		out = append(out, status)
	}
	return out, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, userID uuid.UUID, serviceType models.ServiceType) error {
	if !serviceType.Valid() {
		return fmt.Errorf("unknown service type %q: %w", serviceType, models.ErrValidation)
	}
	if err := s.repo.Delete(ctx, userID, serviceType); err != nil {
		return err
	}
	s.invalidate(userID, serviceType)
	return nil
}

// LLMCredentials returns the user's decoded LLM keys, falling back to the
// server defaults when the user stored none.
func (s *ServiceImpl) LLMCredentials(ctx context.Context, userID uuid.UUID) (string, string, string, error) {
	cfg, err := s.load(ctx, userID, models.ServiceLLM)
	if err == nil {
		key, derr := decode(cfg.APIKey)
		if derr != nil {
			return "", "", "", fmt.Errorf("stored llm key unreadable: %w", derr)
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = s.defaults.LLMBaseURL
		}
		model := cfg.Model
		if model == "" {
			model = s.defaults.LLMModel
		}
		return key, baseURL, model, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", "", "", err
	}

	if s.defaults.LLMAPIKey != "" {
		return s.defaults.LLMAPIKey, s.defaults.LLMBaseURL, s.defaults.LLMModel, nil
	}
	return "", "", "", fmt.Errorf("AI assistant %w", models.ErrNotConfigured)
}

func (s *ServiceImpl) VoiceCredentials(ctx context.Context, userID uuid.UUID) (voice.Credentials, error) {
	cfg, err := s.load(ctx, userID, models.ServiceVoice)
	if err == nil {
		key, kerr := decode(cfg.APIKey)
		secret, serr := decode(cfg.APISecret)
		if kerr != nil || serr != nil {
			return voice.Credentials{}, fmt.Errorf("stored voice keys unreadable: %w", models.ErrValidation)
		}
		return voice.Credentials{AppID: cfg.AppID, APIKey: key, APISecret: secret}, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return voice.Credentials{}, err
	}

	if s.defaults.VoiceAppID != "" && s.defaults.VoiceAPIKey != "" {
		return voice.Credentials{
			AppID:     s.defaults.VoiceAppID,
			APIKey:    s.defaults.VoiceAPIKey,
			APISecret: s.defaults.VoiceSecret,
		}, nil
	}
	return voice.Credentials{}, fmt.Errorf("speech recognition %w", models.ErrNotConfigured)
}

func (s *ServiceImpl) MapCredentials(ctx context.Context, userID uuid.UUID) (string, string, error) {
	cfg, err := s.load(ctx, userID, models.ServiceMap)
	if err == nil {
		key, kerr := decode(cfg.APIKey)
		if kerr != nil {
			return "", "", fmt.Errorf("stored map key unreadable: %w", models.ErrValidation)
		}
		code, cerr := decode(cfg.SecurityCode)
		if cerr != nil {
			code = ""
		}
		return key, code, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", "", err
	}

	if s.defaults.MapKey != "" {
		return s.defaults.MapKey, s.defaults.MapSecurityCode, nil
	}
	return "", "", fmt.Errorf("map service %w", models.ErrNotConfigured)
}

func (s *ServiceImpl) load(ctx context.Context, userID uuid.UUID, st models.ServiceType) (*models.APIConfig, error) {
	key := s.cacheKey(userID, st)
	if cfg, found := s.credCache.Get(key); found {
		return cfg, nil
	}

	cfg, err := s.repo.Get(ctx, userID, st)
	if err != nil {
		return nil, err
	}
	s.credCache.Set(key, cfg)
	return cfg, nil
}

func (s *ServiceImpl) invalidate(userID uuid.UUID, st models.ServiceType) {
	s.credCache.Delete(s.cacheKey(userID, st))
	for _, fn := range s.onInvalidate {
		fn(userID, st)
	}
}

func (s *ServiceImpl) cacheKey(userID uuid.UUID, st models.ServiceType) string {
	return cache.NewCacheKeyBuilder(s.logger).
		AddUser(userID.String()).
		AddService(string(st)).
		BuildOrDefault()
}

func validateForType(cfg models.APIConfig) error {
	switch cfg.ServiceType {
	case models.ServiceLLM:
		if cfg.APIKey == "" {
			return fmt.Errorf("llm api key required: %w", models.ErrValidation)
		}
	case models.ServiceVoice:
		if cfg.AppID == "" || cfg.APIKey == "" || cfg.APISecret == "" {
			return fmt.Errorf("voice app id, api key and secret required: %w", models.ErrValidation)
		}
	case models.ServiceMap:
		if cfg.APIKey == "" {
			return fmt.Errorf("map api key required: %w", models.ErrValidation)
		}
	}
	return nil
}

func encode(secret string) string {
	if secret == "" {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(secret))
}

func decode(stored string) (string, error) {
	if stored == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
