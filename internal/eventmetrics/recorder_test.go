package eventmetrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testRealm  = "myrealm"
	testClient = "clientId"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	return NewRecorder(newTestRegistry(t), zaptest.NewLogger(t))
}

func counterValue(t *testing.T, counter *Counter, labelValues ...string) float64 {
	t.Helper()
	return testutil.ToFloat64(counter.vector.WithLabelValues(labelValues...))
}

func withProvider(provider string) map[string]string {
	return map[string]string{DetailIdentityProvider: provider}
}

func TestRecordUserEventTouchesOnlyDerivedCounter(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	registry := recorder.Registry()

	for _, kind := range EventKinds() {
		if kind.IsPromoted() {
			continue
		}
		registry.Reset()
		recorder.RecordUserEvent(UserEvent{Kind: kind, RealmID: testRealm, ClientID: testClient})

		counter, found := registry.Lookup("keycloak_user_event_" + string(kind))
		if !found {
			t.Fatalf("missing counter for %s", kind)
		}
		if value := counterValue(t, counter, testRealm, testClient); value != 1 {
			t.Fatalf("kind %s: expected 1, got %v", kind, value)
		}
		if series := seriesCount(t, registry); series != 1 {
			t.Fatalf("kind %s: expected exactly one series, got %d", kind, series)
		}
	}
}

func TestRecordUserEventCountsPerTuple(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	counter, _ := recorder.Registry().Lookup("keycloak_user_event_UPDATE_EMAIL")

	for index := 0; index < 5; index++ {
		recorder.RecordUserEvent(UserEvent{Kind: EventUpdateEmail, RealmID: testRealm, ClientID: testClient})
	}
	recorder.RecordUserEvent(UserEvent{Kind: EventUpdateEmail, RealmID: testRealm, ClientID: "other-client"})

	if value := counterValue(t, counter, testRealm, testClient); value != 5 {
		t.Fatalf("expected 5, got %v", value)
	}
	if value := counterValue(t, counter, testRealm, "other-client"); value != 1 {
		t.Fatalf("expected independent tuple at 1, got %v", value)
	}
}

func TestRecordUserEventDefaultsClient(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	counter, _ := recorder.Registry().Lookup("keycloak_user_event_LOGOUT")

	recorder.RecordUserEvent(UserEvent{Kind: EventLogout, RealmID: testRealm})

	if value := counterValue(t, counter, testRealm, UnknownClient); value != 1 {
		t.Fatalf("expected unknown_client series at 1, got %v", value)
	}
}

func TestRecordUserEventDropsUnmappedKinds(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	recorder := NewRecorder(newTestRegistry(t), zap.New(core))

	recorder.RecordUserEvent(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient})
	recorder.RecordUserEvent(UserEvent{Kind: EventKind("SOMETHING_NEW"), RealmID: testRealm})

	if series := seriesCount(t, recorder.Registry()); series != 0 {
		t.Fatalf("expected no increments, got %d series", series)
	}
	warnings := logs.FilterField(zap.String("code", "eventmetrics.unmapped_user_event")).All()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
	fields := warnings[1].ContextMap()
	if fields["event_type"] != "SOMETHING_NEW" || fields["realm"] != testRealm || fields["client"] != UnknownClient {
		t.Fatalf("unexpected warning context: %v", fields)
	}
}

func TestRecordAdminEvent(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	registry := recorder.Registry()
	action, _ := registry.Lookup("keycloak_admin_event_ACTION")
	update, _ := registry.Lookup("keycloak_admin_event_UPDATE")

	scopeEvent := AdminEvent{OperationType: OperationAction, ResourceType: ResourceAuthorizationScope, RealmID: testRealm}
	recorder.RecordAdminEvent(scopeEvent)
	recorder.RecordAdminEvent(scopeEvent)
	recorder.RecordAdminEvent(AdminEvent{OperationType: OperationUpdate, ResourceType: ResourceClient, RealmID: testRealm})

	if value := counterValue(t, action, testRealm, "AUTHORIZATION_SCOPE"); value != 2 {
		t.Fatalf("expected ACTION count 2, got %v", value)
	}
	if value := counterValue(t, update, testRealm, "CLIENT"); value != 1 {
		t.Fatalf("expected UPDATE count 1, got %v", value)
	}
}

func TestRecordAdminEventDropsUnknownOperation(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	recorder := NewRecorder(newTestRegistry(t), zap.New(core))

	recorder.RecordAdminEvent(AdminEvent{OperationType: OperationKind("PATCH"), ResourceType: ResourceUser, RealmID: testRealm})

	if series := seriesCount(t, recorder.Registry()); series != 0 {
		t.Fatalf("expected no increments, got %d series", series)
	}
	if logs.FilterField(zap.String("code", "eventmetrics.unmapped_admin_event")).Len() != 1 {
		t.Fatalf("expected one unmapped admin warning")
	}
}

func TestRecordLoginIdentityProvider(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	logins := recorder.Registry().Logins()

	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient, Details: withProvider("THE_ID_PROVIDER")})
	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient, Details: withProvider("THE_ID_PROVIDER")})
	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient})
	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient, Details: map[string]string{}})

	if value := counterValue(t, logins, testRealm, testClient, "THE_ID_PROVIDER"); value != 2 {
		t.Fatalf("expected 2 brokered logins, got %v", value)
	}
	if value := counterValue(t, logins, testRealm, testClient, DefaultIdentityProvider); value != 2 {
		t.Fatalf("expected 2 default-provider logins, got %v", value)
	}
}

func TestRecordLoginPerRealmAndClient(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	logins := recorder.Registry().Logins()

	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient})
	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: "OTHER_REALM", ClientID: testClient})
	recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: "OTHER_CLIENT"})

	for _, labels := range [][]string{
		{testRealm, testClient, DefaultIdentityProvider},
		{"OTHER_REALM", testClient, DefaultIdentityProvider},
		{testRealm, "OTHER_CLIENT", DefaultIdentityProvider},
	} {
		if value := counterValue(t, logins, labels...); value != 1 {
			t.Fatalf("labels %v: expected 1, got %v", labels, value)
		}
	}
}

func TestRecordRegistration(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	registrations := recorder.Registry().Registrations()

	recorder.RecordRegistration(UserEvent{Kind: EventRegister, RealmID: testRealm, ClientID: testClient, Details: withProvider("THE_ID_PROVIDER")})
	recorder.RecordRegistration(UserEvent{Kind: EventRegister, RealmID: testRealm, ClientID: testClient})

	if value := counterValue(t, registrations, testRealm, testClient, "THE_ID_PROVIDER"); value != 1 {
		t.Fatalf("expected 1 brokered registration, got %v", value)
	}
	if value := counterValue(t, registrations, testRealm, testClient, DefaultIdentityProvider); value != 1 {
		t.Fatalf("expected 1 default registration, got %v", value)
	}
	if value := counterValue(t, recorder.Registry().Logins(), testRealm, testClient, DefaultIdentityProvider); value != 0 {
		t.Fatalf("registration must not count as login, got %v", value)
	}
}

func TestRecordLoginFailure(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	failures := recorder.Registry().FailedLogins()

	recorder.RecordLoginFailure(UserEvent{Kind: EventLoginError, RealmID: testRealm, ClientID: testClient, Error: "user_not_found", Details: withProvider("THE_ID_PROVIDER")})
	recorder.RecordLoginFailure(UserEvent{Kind: EventLoginError, RealmID: testRealm, ClientID: testClient, Error: "user_not_found"})
	recorder.RecordLoginFailure(UserEvent{Kind: EventLoginError, RealmID: testRealm, ClientID: testClient, Error: "invalid_user_credentials"})
	recorder.RecordLoginFailure(UserEvent{Kind: EventLoginError, RealmID: testRealm})

	tests := []struct {
		labels   []string
		expected float64
	}{
		{labels: []string{testRealm, testClient, "THE_ID_PROVIDER", "user_not_found"}, expected: 1},
		{labels: []string{testRealm, testClient, DefaultIdentityProvider, "user_not_found"}, expected: 1},
		{labels: []string{testRealm, testClient, DefaultIdentityProvider, "invalid_user_credentials"}, expected: 1},
		{labels: []string{testRealm, UnknownClient, DefaultIdentityProvider, UnknownError}, expected: 1},
	}
	for _, testCase := range tests {
		if value := counterValue(t, failures, testCase.labels...); value != testCase.expected {
			t.Fatalf("labels %v: expected %v, got %v", testCase.labels, testCase.expected, value)
		}
	}
}

func TestRecorderConcurrentIncrementsAreNotLost(t *testing.T) {
	t.Parallel()
	recorder := newTestRecorder(t)
	const workers = 16
	const perWorker = 250

	var waitGroup sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			for index := 0; index < perWorker; index++ {
				recorder.RecordLogin(UserEvent{Kind: EventLogin, RealmID: testRealm, ClientID: testClient})
				recorder.RecordUserEvent(UserEvent{Kind: EventRevokeGrant, RealmID: testRealm, ClientID: testClient})
			}
		}()
	}
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		for index := 0; index < 20; index++ {
			if err := recorder.Export(discardWriter{}); err != nil {
				t.Errorf("export during increments: %v", err)
				return
			}
		}
	}()
	waitGroup.Wait()

	if value := counterValue(t, recorder.Registry().Logins(), testRealm, testClient, DefaultIdentityProvider); value != workers*perWorker {
		t.Fatalf("expected %d logins, got %v", workers*perWorker, value)
	}
	revokes, _ := recorder.Registry().Lookup("keycloak_user_event_REVOKE_GRANT")
	if value := counterValue(t, revokes, testRealm, testClient); value != workers*perWorker {
		t.Fatalf("expected %d revokes, got %v", workers*perWorker, value)
	}
}

type discardWriter struct{}

func (discardWriter) Write(payload []byte) (int, error) {
	return len(payload), nil
}
