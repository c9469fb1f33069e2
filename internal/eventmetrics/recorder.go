package eventmetrics

import (
	"io"

	"go.uber.org/zap"
)

// Recorder translates identity events into counter increments.
type Recorder struct {
	registry *Registry
	logger   *zap.Logger
}

// NewRecorder binds a recorder to registry. A nil registry selects Default().
func NewRecorder(registry *Registry, logger *zap.Logger) *Recorder {
	if registry == nil {
		registry = Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{registry: registry, logger: logger}
}

// Registry exposes the backing registry.
func (recorder *Recorder) Registry() *Registry {
	return recorder.registry
}

// RecordUserEvent counts a generic user event. Promoted and unknown kinds are logged and dropped.
func (recorder *Recorder) RecordUserEvent(event UserEvent) {
	counterName := recorder.registry.UserCounterName(event.Kind)
	counter, ok := recorder.registry.Lookup(counterName)
	if !ok {
		recorder.logger.Warn("counter for user event does not exist",
			zap.String("code", "eventmetrics.unmapped_user_event"),
			zap.String("event_type", string(event.Kind)),
			zap.String("realm", event.RealmID),
			zap.String("client", clientLabel(event)))
		return
	}
	recorder.increment(counter, event.RealmID, clientLabel(event))
}

// RecordAdminEvent counts a generic admin event. Unknown operations are logged and dropped.
func (recorder *Recorder) RecordAdminEvent(event AdminEvent) {
	counterName := recorder.registry.AdminCounterName(event.OperationType)
	counter, ok := recorder.registry.Lookup(counterName)
	if !ok {
		recorder.logger.Warn("counter for admin event does not exist",
			zap.String("code", "eventmetrics.unmapped_admin_event"),
			zap.String("operation_type", string(event.OperationType)),
			zap.String("resource_type", string(event.ResourceType)),
			zap.String("realm", event.RealmID))
		return
	}
	recorder.increment(counter, event.RealmID, string(event.ResourceType))
}

// RecordLogin counts a successful login.
func (recorder *Recorder) RecordLogin(event UserEvent) {
	recorder.increment(recorder.registry.Logins(), event.RealmID, clientLabel(event), identityProviderLabel(event))
}

// RecordRegistration counts a user registration.
func (recorder *Recorder) RecordRegistration(event UserEvent) {
	recorder.increment(recorder.registry.Registrations(), event.RealmID, clientLabel(event), identityProviderLabel(event))
}

// RecordLoginFailure counts a failed login attempt, keyed additionally by error code.
func (recorder *Recorder) RecordLoginFailure(event UserEvent) {
	recorder.increment(recorder.registry.FailedLogins(), event.RealmID, clientLabel(event), identityProviderLabel(event), errorLabel(event))
}

// Export writes every counter in text exposition format.
func (recorder *Recorder) Export(sink io.Writer) error {
	return recorder.registry.Serialize(sink)
}

func (recorder *Recorder) increment(counter *Counter, labelValues ...string) {
	if err := counter.Inc(labelValues...); err != nil {
		recorder.logger.Error("counter increment failed",
			zap.String("code", "eventmetrics.increment_failed"),
			zap.String("counter", counter.Name()),
			zap.Error(err))
	}
}
