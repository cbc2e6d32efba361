package models

import "errors"

// Domain specific errors shared across services and handlers.
var (
	ErrNotFound        = errors.New("requested item not found")
	ErrConflict        = errors.New("item already exists or conflict")
	ErrUnauthenticated = errors.New("authentication required or invalid credentials")
	ErrForbidden       = errors.New("action forbidden")
	ErrBadRequest      = errors.New("bad request")
	ErrValidation      = errors.New("validation failed")

	// Provider configuration.
	ErrNotConfigured = errors.New("service not configured, add your API key in settings")

	// AI plan generation.
	ErrMalformedPlan = errors.New("AI returned malformed data")
	ErrParseRetry    = errors.New("cannot parse AI response, please retry")

	// Speech recognition.
	ErrNoSpeech    = errors.New("no speech detected")
	ErrRecognition = errors.New("speech recognition failed")
	ErrTransport   = errors.New("speech service connection failed")

	// Geo.
	ErrInsufficientPoints = errors.New("insufficient valid points for route planning")
	ErrRoutingFailed      = errors.New("route planning failed")
	ErrGeocodingFailed    = errors.New("geocoding lookup failed")
)
