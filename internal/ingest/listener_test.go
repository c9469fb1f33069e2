package ingest

import (
	"errors"
	"sync"
	"testing"

	"github.com/tyemirov/eventmetrics/internal/eventmetrics"
)

type recordedCall struct {
	method string
	kind   string
	realm  string
}

type fakeRecorder struct {
	mutex sync.Mutex
	calls []recordedCall
}

func (recorder *fakeRecorder) record(method string, kind string, realm string) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.calls = append(recorder.calls, recordedCall{method: method, kind: kind, realm: realm})
}

func (recorder *fakeRecorder) RecordUserEvent(event eventmetrics.UserEvent) {
	recorder.record("user", string(event.Kind), event.RealmID)
}

func (recorder *fakeRecorder) RecordAdminEvent(event eventmetrics.AdminEvent) {
	recorder.record("admin", string(event.OperationType), event.RealmID)
}

func (recorder *fakeRecorder) RecordLogin(event eventmetrics.UserEvent) {
	recorder.record("login", string(event.Kind), event.RealmID)
}

func (recorder *fakeRecorder) RecordRegistration(event eventmetrics.UserEvent) {
	recorder.record("registration", string(event.Kind), event.RealmID)
}

func (recorder *fakeRecorder) RecordLoginFailure(event eventmetrics.UserEvent) {
	recorder.record("login_failure", string(event.Kind), event.RealmID)
}

func (recorder *fakeRecorder) snapshot() []recordedCall {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]recordedCall(nil), recorder.calls...)
}

func TestListenerDispatchesByKind(t *testing.T) {
	testCases := []struct {
		kind           eventmetrics.EventKind
		expectedMethod string
	}{
		{kind: eventmetrics.EventLogin, expectedMethod: "login"},
		{kind: eventmetrics.EventRegister, expectedMethod: "registration"},
		{kind: eventmetrics.EventLoginError, expectedMethod: "login_failure"},
		{kind: eventmetrics.EventUpdateEmail, expectedMethod: "user"},
		{kind: eventmetrics.EventKind("NOT_A_KIND"), expectedMethod: "user"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(string(testCase.kind), func(t *testing.T) {
			recorder := &fakeRecorder{}
			listener := NewListener(recorder, nil)
			listener.OnEvent(eventmetrics.UserEvent{Kind: testCase.kind, RealmID: "myrealm"})

			calls := recorder.snapshot()
			if len(calls) != 1 {
				t.Fatalf("expected one recorder call, got %d", len(calls))
			}
			if calls[0].method != testCase.expectedMethod {
				t.Fatalf("expected %s, got %s", testCase.expectedMethod, calls[0].method)
			}
			if calls[0].realm != "myrealm" {
				t.Fatalf("unexpected realm %q", calls[0].realm)
			}
		})
	}
}

func TestListenerDispatchesAdminEvents(t *testing.T) {
	recorder := &fakeRecorder{}
	listener := NewListener(recorder, nil)
	listener.OnAdminEvent(eventmetrics.AdminEvent{
		OperationType: eventmetrics.OperationCreate,
		ResourceType:  eventmetrics.ResourceUser,
		RealmID:       "myrealm",
	})

	calls := recorder.snapshot()
	if len(calls) != 1 || calls[0].method != "admin" || calls[0].kind != "CREATE" {
		t.Fatalf("unexpected calls: %#v", calls)
	}
}

func TestNewListenerRequiresRecorder(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for nil recorder")
		}
	}()
	NewListener(nil, nil)
}

func TestDecodeUserEvent(t *testing.T) {
	event, err := DecodeUserEvent([]byte(`{"type":"LOGIN","realmId":"myrealm","clientId":"app","details":{"identity_provider":"github"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Kind != eventmetrics.EventLogin || event.RealmID != "myrealm" || event.ClientID != "app" {
		t.Fatalf("unexpected event: %#v", event)
	}
	if event.Details["identity_provider"] != "github" {
		t.Fatalf("expected identity provider detail, got %#v", event.Details)
	}
}

func TestDecodeUserEventRejectsInvalidPayloads(t *testing.T) {
	testCases := []struct {
		name     string
		payload  string
		expected error
	}{
		{name: "malformed", payload: `{"type":`, expected: ErrInvalidEvent},
		{name: "missing type", payload: `{"realmId":"myrealm"}`, expected: ErrMissingEventType},
		{name: "missing realm", payload: `{"type":"LOGIN"}`, expected: ErrMissingRealm},
		{name: "blank realm", payload: `{"type":"LOGIN","realmId":"  "}`, expected: ErrMissingRealm},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			_, err := DecodeUserEvent([]byte(testCase.payload))
			if !errors.Is(err, testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, err)
			}
			if !errors.Is(err, ErrInvalidEvent) {
				t.Fatalf("expected every decode failure to wrap ErrInvalidEvent, got %v", err)
			}
		})
	}
}

func TestDecodeAdminEvent(t *testing.T) {
	event, err := DecodeAdminEvent([]byte(`{"operationType":"DELETE","resourceType":"CLIENT","realmId":"myrealm"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.OperationType != eventmetrics.OperationDelete || event.ResourceType != eventmetrics.ResourceClient {
		t.Fatalf("unexpected event: %#v", event)
	}

	if _, missingErr := DecodeAdminEvent([]byte(`{"realmId":"myrealm"}`)); !errors.Is(missingErr, ErrMissingEventType) {
		t.Fatalf("expected ErrMissingEventType, got %v", missingErr)
	}
	if _, missingRealmErr := DecodeAdminEvent([]byte(`{"operationType":"CREATE"}`)); !errors.Is(missingRealmErr, ErrMissingRealm) {
		t.Fatalf("expected ErrMissingRealm, got %v", missingRealmErr)
	}
}
