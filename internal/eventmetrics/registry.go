package eventmetrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// DefaultNamespace prefixes every counter name.
const DefaultNamespace = "keycloak"

const (
	labelRealm    = "realm"
	labelClient   = "client"
	labelProvider = "provider"
	labelError    = "error"
	labelResource = "resource"

	helpLogins             = "Total successful logins"
	helpFailedLogins       = "Total failed login attempts"
	helpRegistrations      = "Total registered users"
	helpGenericUserEvent   = "Generic KeyCloak User event"
	helpGenericAdminEvent  = "Generic KeyCloak Admin event"
	userEventNameSegment   = "_user_event_"
	adminEventNameSegment  = "_admin_event_"
	loginsNameSuffix       = "_logins"
	failedLoginsNameSuffix = "_failed_login_attempts"
	registrationNameSuffix = "_registrations"
)

// RegistryConfig configures NewRegistry. Nil kind lists select the full vocabularies.
type RegistryConfig struct {
	Namespace      string
	UserEventKinds []EventKind
	OperationKinds []OperationKind
	// RuntimeMetrics registers the Go runtime and process collectors next to the counters.
	RuntimeMetrics bool
}

// Counter is a registered, labeled accumulator.
type Counter struct {
	name       string
	help       string
	labelNames []string
	vector     *prometheus.CounterVec
}

// Name returns the exposition name.
func (counter *Counter) Name() string {
	return counter.name
}

// Help returns the help text.
func (counter *Counter) Help() string {
	return counter.help
}

// LabelNames returns the declared label names in exposition order.
func (counter *Counter) LabelNames() []string {
	cloned := make([]string, len(counter.labelNames))
	copy(cloned, counter.labelNames)
	return cloned
}

// Inc adds one to the series identified by labelValues, creating it at 1 when unseen.
func (counter *Counter) Inc(labelValues ...string) error {
	if len(labelValues) != len(counter.labelNames) {
		return fmt.Errorf("eventmetrics.inc.%s: %w: want %d values, got %d", counter.name, ErrLabelCardinality, len(counter.labelNames), len(labelValues))
	}
	series, err := counter.vector.GetMetricWithLabelValues(labelValues...)
	if err != nil {
		return fmt.Errorf("eventmetrics.inc.%s: %w", counter.name, err)
	}
	series.Inc()
	return nil
}

func (counter *Counter) reset() {
	counter.vector.Reset()
}

// Registry owns every event counter. The set of counters is fixed once NewRegistry returns.
type Registry struct {
	namespace     string
	gatherer      *prometheus.Registry
	counters      map[string]*Counter
	genericCount  int
	logins        *Counter
	failedLogins  *Counter
	registrations *Counter
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry, building it on first use.
// It panics if the vocabularies derive a duplicate counter name.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		registry, err := NewRegistry(RegistryConfig{RuntimeMetrics: true})
		if err != nil {
			panic(err)
		}
		defaultRegistry = registry
	})
	return defaultRegistry
}

// NewRegistry builds and registers all counters.
func NewRegistry(configuration RegistryConfig) (*Registry, error) {
	namespace := strings.TrimSpace(configuration.Namespace)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	userKinds := configuration.UserEventKinds
	if userKinds == nil {
		userKinds = eventKinds
	}
	operations := configuration.OperationKinds
	if operations == nil {
		operations = operationKinds
	}

	registry := &Registry{
		namespace: namespace,
		gatherer:  prometheus.NewRegistry(),
		counters:  make(map[string]*Counter),
	}

	var err error
	if registry.logins, err = registry.register(namespace+loginsNameSuffix, helpLogins, []string{labelRealm, labelClient, labelProvider}); err != nil {
		return nil, err
	}
	if registry.failedLogins, err = registry.register(namespace+failedLoginsNameSuffix, helpFailedLogins, []string{labelRealm, labelClient, labelProvider, labelError}); err != nil {
		return nil, err
	}
	if registry.registrations, err = registry.register(namespace+registrationNameSuffix, helpRegistrations, []string{labelRealm, labelClient, labelProvider}); err != nil {
		return nil, err
	}

	for _, kind := range userKinds {
		if kind.IsPromoted() {
			continue
		}
		if _, err := registry.register(registry.UserCounterName(kind), helpGenericUserEvent, []string{labelRealm, labelClient}); err != nil {
			return nil, err
		}
		registry.genericCount++
	}
	for _, operation := range operations {
		if _, err := registry.register(registry.AdminCounterName(operation), helpGenericAdminEvent, []string{labelRealm, labelResource}); err != nil {
			return nil, err
		}
		registry.genericCount++
	}

	if configuration.RuntimeMetrics {
		if err := registry.gatherer.Register(collectors.NewGoCollector()); err != nil {
			return nil, fmt.Errorf("eventmetrics.runtime.go: %w", err)
		}
		if err := registry.gatherer.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
			return nil, fmt.Errorf("eventmetrics.runtime.process: %w", err)
		}
	}
	return registry, nil
}

func (registry *Registry) register(name string, help string, labelNames []string) (*Counter, error) {
	if _, exists := registry.counters[name]; exists {
		return nil, fmt.Errorf("eventmetrics.register.%s: %w", name, ErrDuplicateCounter)
	}
	vector := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labelNames)
	if err := registry.gatherer.Register(vector); err != nil {
		return nil, fmt.Errorf("eventmetrics.register.%s: %w", name, err)
	}
	counter := &Counter{
		name:       name,
		help:       help,
		labelNames: append([]string(nil), labelNames...),
		vector:     vector,
	}
	registry.counters[name] = counter
	return counter, nil
}

// UserCounterName derives the generic counter name for a user event kind.
func (registry *Registry) UserCounterName(kind EventKind) string {
	return registry.namespace + userEventNameSegment + string(kind)
}

// AdminCounterName derives the generic counter name for an admin operation.
func (registry *Registry) AdminCounterName(operation OperationKind) string {
	return registry.namespace + adminEventNameSegment + string(operation)
}

// Lookup returns the counter registered under name.
func (registry *Registry) Lookup(name string) (*Counter, bool) {
	counter, ok := registry.counters[name]
	return counter, ok
}

// CounterNames lists every registered counter name, sorted.
func (registry *Registry) CounterNames() []string {
	names := make([]string, 0, len(registry.counters))
	for name := range registry.counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GenericCounterCount returns the number of per-kind counters, excluding the promoted ones.
func (registry *Registry) GenericCounterCount() int {
	return registry.genericCount
}

// Logins returns the dedicated successful login counter.
func (registry *Registry) Logins() *Counter {
	return registry.logins
}

// FailedLogins returns the dedicated failed login counter.
func (registry *Registry) FailedLogins() *Counter {
	return registry.failedLogins
}

// Registrations returns the dedicated registration counter.
func (registry *Registry) Registrations() *Counter {
	return registry.registrations
}

// Reset zeroes every series while keeping the registered counters. Intended for tests.
func (registry *Registry) Reset() {
	for _, counter := range registry.counters {
		counter.reset()
	}
}
