package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType identifies which external provider a stored credential is for.
type ServiceType string

const (
	ServiceLLM   ServiceType = "llm"
	ServiceVoice ServiceType = "voice"
	ServiceMap   ServiceType = "map"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceLLM, ServiceVoice, ServiceMap:
		return true
	}
	return false
}

// APIConfig holds one user's credentials for one service type. Secret fields
// are stored base64-encoded and only decoded server-side at call time.
type APIConfig struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	ServiceType ServiceType `json:"service_type"`

	// llm
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`

	// voice
	AppID     string `json:"app_id,omitempty"`
	APISecret string `json:"api_secret,omitempty"`

	// map
	SecurityCode string `json:"security_code,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// APIConfigStatus is the secret-free view returned by status listings.
type APIConfigStatus struct {
	ServiceType ServiceType `json:"service_type"`
	Configured  bool        `json:"configured"`
	Model       string      `json:"model,omitempty"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}
