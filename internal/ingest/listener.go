package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tyemirov/eventmetrics/internal/eventmetrics"
	"go.uber.org/zap"
)

var (
	// ErrInvalidEvent indicates a pushed payload could not be decoded into an event.
	ErrInvalidEvent = errors.New("ingest.invalid_event")
	// ErrMissingEventType indicates the payload carries no event or operation type.
	ErrMissingEventType = errors.New("ingest.missing_event_type")
	// ErrMissingRealm indicates the payload carries no realm id.
	ErrMissingRealm = errors.New("ingest.missing_realm")
)

// EventRecorder counts identity events.
type EventRecorder interface {
	RecordUserEvent(event eventmetrics.UserEvent)
	RecordAdminEvent(event eventmetrics.AdminEvent)
	RecordLogin(event eventmetrics.UserEvent)
	RecordRegistration(event eventmetrics.UserEvent)
	RecordLoginFailure(event eventmetrics.UserEvent)
}

// Listener routes decoded events to the recorder entry point matching their kind.
type Listener struct {
	recorder EventRecorder
	logger   *zap.Logger
}

// NewListener constructs a Listener.
func NewListener(recorder EventRecorder, logger *zap.Logger) *Listener {
	if recorder == nil {
		panic("event recorder is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{recorder: recorder, logger: logger}
}

// OnEvent dispatches a user event.
func (listener *Listener) OnEvent(event eventmetrics.UserEvent) {
	listener.logger.Debug("user event received",
		zap.String("event_type", string(event.Kind)),
		zap.String("realm", event.RealmID))
	switch event.Kind {
	case eventmetrics.EventLogin:
		listener.recorder.RecordLogin(event)
	case eventmetrics.EventRegister:
		listener.recorder.RecordRegistration(event)
	case eventmetrics.EventLoginError:
		listener.recorder.RecordLoginFailure(event)
	default:
		listener.recorder.RecordUserEvent(event)
	}
}

// OnAdminEvent dispatches an admin event.
func (listener *Listener) OnAdminEvent(event eventmetrics.AdminEvent) {
	listener.logger.Debug("admin event received",
		zap.String("operation_type", string(event.OperationType)),
		zap.String("realm", event.RealmID))
	listener.recorder.RecordAdminEvent(event)
}

// DecodeUserEvent parses and validates a JSON user event.
func DecodeUserEvent(payload []byte) (eventmetrics.UserEvent, error) {
	var event eventmetrics.UserEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return eventmetrics.UserEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := validateUserEvent(event); err != nil {
		return eventmetrics.UserEvent{}, err
	}
	return event, nil
}

// DecodeAdminEvent parses and validates a JSON admin event.
func DecodeAdminEvent(payload []byte) (eventmetrics.AdminEvent, error) {
	var event eventmetrics.AdminEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return eventmetrics.AdminEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := validateAdminEvent(event); err != nil {
		return eventmetrics.AdminEvent{}, err
	}
	return event, nil
}

func validateUserEvent(event eventmetrics.UserEvent) error {
	if strings.TrimSpace(string(event.Kind)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrMissingEventType)
	}
	if strings.TrimSpace(event.RealmID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrMissingRealm)
	}
	return nil
}

func validateAdminEvent(event eventmetrics.AdminEvent) error {
	if strings.TrimSpace(string(event.OperationType)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrMissingEventType)
	}
	if strings.TrimSpace(event.RealmID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEvent, ErrMissingRealm)
	}
	return nil
}
