package eventmetrics

import "strings"

const (
	// DetailIdentityProvider is the detail key carrying the brokered identity provider alias.
	DetailIdentityProvider = "identity_provider"
	// DefaultIdentityProvider labels events that did not go through a brokered provider.
	DefaultIdentityProvider = "keycloak"
	// UnknownClient labels events that carry no client id.
	UnknownClient = "unknown_client"
	// UnknownError labels failed logins that carry no error code.
	UnknownError = "unknown_error"
)

// UserEvent is a user-domain event as pushed by the identity platform.
type UserEvent struct {
	Kind     EventKind         `json:"type"`
	RealmID  string            `json:"realmId"`
	ClientID string            `json:"clientId,omitempty"`
	UserID   string            `json:"userId,omitempty"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// AdminEvent is an administrative mutation as pushed by the identity platform.
type AdminEvent struct {
	OperationType OperationKind `json:"operationType"`
	ResourceType  ResourceType  `json:"resourceType"`
	RealmID       string        `json:"realmId"`
}

func clientLabel(event UserEvent) string {
	if strings.TrimSpace(event.ClientID) == "" {
		return UnknownClient
	}
	return event.ClientID
}

func identityProviderLabel(event UserEvent) string {
	if event.Details == nil {
		return DefaultIdentityProvider
	}
	provider, ok := event.Details[DetailIdentityProvider]
	if !ok || strings.TrimSpace(provider) == "" {
		return DefaultIdentityProvider
	}
	return provider
}

func errorLabel(event UserEvent) string {
	if strings.TrimSpace(event.Error) == "" {
		return UnknownError
	}
	return event.Error
}
