package eventmetrics

// EventKind identifies a user-domain event emitted by the identity platform.
type EventKind string

// OperationKind identifies an administrative mutation.
type OperationKind string

// ResourceType names the resource an administrative event touched.
type ResourceType string

const (
	EventLogin                              EventKind = "LOGIN"
	EventLoginError                         EventKind = "LOGIN_ERROR"
	EventRegister                           EventKind = "REGISTER"
	EventRegisterError                      EventKind = "REGISTER_ERROR"
	EventLogout                             EventKind = "LOGOUT"
	EventLogoutError                        EventKind = "LOGOUT_ERROR"
	EventCodeToToken                        EventKind = "CODE_TO_TOKEN"
	EventCodeToTokenError                   EventKind = "CODE_TO_TOKEN_ERROR"
	EventClientLogin                        EventKind = "CLIENT_LOGIN"
	EventClientLoginError                   EventKind = "CLIENT_LOGIN_ERROR"
	EventRefreshToken                       EventKind = "REFRESH_TOKEN"
	EventRefreshTokenError                  EventKind = "REFRESH_TOKEN_ERROR"
	EventValidateAccessToken                EventKind = "VALIDATE_ACCESS_TOKEN"
	EventValidateAccessTokenError           EventKind = "VALIDATE_ACCESS_TOKEN_ERROR"
	EventIntrospectToken                    EventKind = "INTROSPECT_TOKEN"
	EventIntrospectTokenError               EventKind = "INTROSPECT_TOKEN_ERROR"
	EventFederatedIdentityLink              EventKind = "FEDERATED_IDENTITY_LINK"
	EventFederatedIdentityLinkError         EventKind = "FEDERATED_IDENTITY_LINK_ERROR"
	EventRemoveFederatedIdentity            EventKind = "REMOVE_FEDERATED_IDENTITY"
	EventRemoveFederatedIdentityError       EventKind = "REMOVE_FEDERATED_IDENTITY_ERROR"
	EventUpdateEmail                        EventKind = "UPDATE_EMAIL"
	EventUpdateEmailError                   EventKind = "UPDATE_EMAIL_ERROR"
	EventUpdateProfile                      EventKind = "UPDATE_PROFILE"
	EventUpdateProfileError                 EventKind = "UPDATE_PROFILE_ERROR"
	EventUpdatePassword                     EventKind = "UPDATE_PASSWORD"
	EventUpdatePasswordError                EventKind = "UPDATE_PASSWORD_ERROR"
	EventUpdateTOTP                         EventKind = "UPDATE_TOTP"
	EventUpdateTOTPError                    EventKind = "UPDATE_TOTP_ERROR"
	EventVerifyEmail                        EventKind = "VERIFY_EMAIL"
	EventVerifyEmailError                   EventKind = "VERIFY_EMAIL_ERROR"
	EventRemoveTOTP                         EventKind = "REMOVE_TOTP"
	EventRemoveTOTPError                    EventKind = "REMOVE_TOTP_ERROR"
	EventRevokeGrant                        EventKind = "REVOKE_GRANT"
	EventRevokeGrantError                   EventKind = "REVOKE_GRANT_ERROR"
	EventSendVerifyEmail                    EventKind = "SEND_VERIFY_EMAIL"
	EventSendVerifyEmailError               EventKind = "SEND_VERIFY_EMAIL_ERROR"
	EventSendResetPassword                  EventKind = "SEND_RESET_PASSWORD"
	EventSendResetPasswordError             EventKind = "SEND_RESET_PASSWORD_ERROR"
	EventSendIdentityProviderLink           EventKind = "SEND_IDENTITY_PROVIDER_LINK"
	EventSendIdentityProviderLinkError      EventKind = "SEND_IDENTITY_PROVIDER_LINK_ERROR"
	EventResetPassword                      EventKind = "RESET_PASSWORD"
	EventResetPasswordError                 EventKind = "RESET_PASSWORD_ERROR"
	EventRestartAuthentication              EventKind = "RESTART_AUTHENTICATION"
	EventRestartAuthenticationError         EventKind = "RESTART_AUTHENTICATION_ERROR"
	EventInvalidSignature                   EventKind = "INVALID_SIGNATURE"
	EventInvalidSignatureError              EventKind = "INVALID_SIGNATURE_ERROR"
	EventRegisterNode                       EventKind = "REGISTER_NODE"
	EventRegisterNodeError                  EventKind = "REGISTER_NODE_ERROR"
	EventUnregisterNode                     EventKind = "UNREGISTER_NODE"
	EventUnregisterNodeError                EventKind = "UNREGISTER_NODE_ERROR"
	EventUserInfoRequest                    EventKind = "USER_INFO_REQUEST"
	EventUserInfoRequestError               EventKind = "USER_INFO_REQUEST_ERROR"
	EventIdentityProviderLinkAccount        EventKind = "IDENTITY_PROVIDER_LINK_ACCOUNT"
	EventIdentityProviderLinkAccountError   EventKind = "IDENTITY_PROVIDER_LINK_ACCOUNT_ERROR"
	EventIdentityProviderLogin              EventKind = "IDENTITY_PROVIDER_LOGIN"
	EventIdentityProviderLoginError         EventKind = "IDENTITY_PROVIDER_LOGIN_ERROR"
	EventIdentityProviderFirstLogin         EventKind = "IDENTITY_PROVIDER_FIRST_LOGIN"
	EventIdentityProviderFirstLoginError    EventKind = "IDENTITY_PROVIDER_FIRST_LOGIN_ERROR"
	EventIdentityProviderPostLogin          EventKind = "IDENTITY_PROVIDER_POST_LOGIN"
	EventIdentityProviderPostLoginError     EventKind = "IDENTITY_PROVIDER_POST_LOGIN_ERROR"
	EventIdentityProviderResponse           EventKind = "IDENTITY_PROVIDER_RESPONSE"
	EventIdentityProviderResponseError      EventKind = "IDENTITY_PROVIDER_RESPONSE_ERROR"
	EventIdentityProviderRetrieveToken      EventKind = "IDENTITY_PROVIDER_RETRIEVE_TOKEN"
	EventIdentityProviderRetrieveTokenError EventKind = "IDENTITY_PROVIDER_RETRIEVE_TOKEN_ERROR"
	EventImpersonate                        EventKind = "IMPERSONATE"
	EventImpersonateError                   EventKind = "IMPERSONATE_ERROR"
	EventCustomRequiredAction               EventKind = "CUSTOM_REQUIRED_ACTION"
	EventCustomRequiredActionError          EventKind = "CUSTOM_REQUIRED_ACTION_ERROR"
	EventExecuteActions                     EventKind = "EXECUTE_ACTIONS"
	EventExecuteActionsError                EventKind = "EXECUTE_ACTIONS_ERROR"
	EventExecuteActionToken                 EventKind = "EXECUTE_ACTION_TOKEN"
	EventExecuteActionTokenError            EventKind = "EXECUTE_ACTION_TOKEN_ERROR"
	EventClientInfo                         EventKind = "CLIENT_INFO"
	EventClientInfoError                    EventKind = "CLIENT_INFO_ERROR"
	EventClientRegister                     EventKind = "CLIENT_REGISTER"
	EventClientRegisterError                EventKind = "CLIENT_REGISTER_ERROR"
	EventClientUpdate                       EventKind = "CLIENT_UPDATE"
	EventClientUpdateError                  EventKind = "CLIENT_UPDATE_ERROR"
	EventClientDelete                       EventKind = "CLIENT_DELETE"
	EventClientDeleteError                  EventKind = "CLIENT_DELETE_ERROR"
	EventClientInitiatedAccountLinking      EventKind = "CLIENT_INITIATED_ACCOUNT_LINKING"
	EventClientInitiatedAccountLinkingError EventKind = "CLIENT_INITIATED_ACCOUNT_LINKING_ERROR"
	EventTokenExchange                      EventKind = "TOKEN_EXCHANGE"
	EventTokenExchangeError                 EventKind = "TOKEN_EXCHANGE_ERROR"
	EventPermissionToken                    EventKind = "PERMISSION_TOKEN"
	EventPermissionTokenError               EventKind = "PERMISSION_TOKEN_ERROR"
)

const (
	OperationCreate OperationKind = "CREATE"
	OperationUpdate OperationKind = "UPDATE"
	OperationDelete OperationKind = "DELETE"
	OperationAction OperationKind = "ACTION"
)

const (
	ResourceRealm                       ResourceType = "REALM"
	ResourceRealmRole                   ResourceType = "REALM_ROLE"
	ResourceRealmRoleMapping            ResourceType = "REALM_ROLE_MAPPING"
	ResourceRealmScopeMapping           ResourceType = "REALM_SCOPE_MAPPING"
	ResourceAuthFlow                    ResourceType = "AUTH_FLOW"
	ResourceAuthExecutionFlow           ResourceType = "AUTH_EXECUTION_FLOW"
	ResourceAuthExecution               ResourceType = "AUTH_EXECUTION"
	ResourceAuthenticatorConfig         ResourceType = "AUTHENTICATOR_CONFIG"
	ResourceRequiredAction              ResourceType = "REQUIRED_ACTION"
	ResourceIdentityProvider            ResourceType = "IDENTITY_PROVIDER"
	ResourceIdentityProviderMapper      ResourceType = "IDENTITY_PROVIDER_MAPPER"
	ResourceProtocolMapper              ResourceType = "PROTOCOL_MAPPER"
	ResourceUser                        ResourceType = "USER"
	ResourceUserLoginFailure            ResourceType = "USER_LOGIN_FAILURE"
	ResourceUserSession                 ResourceType = "USER_SESSION"
	ResourceUserFederationProvider      ResourceType = "USER_FEDERATION_PROVIDER"
	ResourceUserFederationMapper        ResourceType = "USER_FEDERATION_MAPPER"
	ResourceGroup                       ResourceType = "GROUP"
	ResourceGroupMembership             ResourceType = "GROUP_MEMBERSHIP"
	ResourceClient                      ResourceType = "CLIENT"
	ResourceClientInitialAccessModel    ResourceType = "CLIENT_INITIAL_ACCESS_MODEL"
	ResourceClientRole                  ResourceType = "CLIENT_ROLE"
	ResourceClientRoleMapping           ResourceType = "CLIENT_ROLE_MAPPING"
	ResourceClientScope                 ResourceType = "CLIENT_SCOPE"
	ResourceClientScopeMapping          ResourceType = "CLIENT_SCOPE_MAPPING"
	ResourceClientScopeClientMapping    ResourceType = "CLIENT_SCOPE_CLIENT_MAPPING"
	ResourceClusterNode                 ResourceType = "CLUSTER_NODE"
	ResourceComponent                   ResourceType = "COMPONENT"
	ResourceAuthorizationResourceServer ResourceType = "AUTHORIZATION_RESOURCE_SERVER"
	ResourceAuthorizationResource       ResourceType = "AUTHORIZATION_RESOURCE"
	ResourceAuthorizationScope          ResourceType = "AUTHORIZATION_SCOPE"
	ResourceAuthorizationPolicy         ResourceType = "AUTHORIZATION_POLICY"
	ResourceCustom                      ResourceType = "CUSTOM"
)

var eventKinds = []EventKind{
	EventLogin, EventLoginError,
	EventRegister, EventRegisterError,
	EventLogout, EventLogoutError,
	EventCodeToToken, EventCodeToTokenError,
	EventClientLogin, EventClientLoginError,
	EventRefreshToken, EventRefreshTokenError,
	EventValidateAccessToken, EventValidateAccessTokenError,
	EventIntrospectToken, EventIntrospectTokenError,
	EventFederatedIdentityLink, EventFederatedIdentityLinkError,
	EventRemoveFederatedIdentity, EventRemoveFederatedIdentityError,
	EventUpdateEmail, EventUpdateEmailError,
	EventUpdateProfile, EventUpdateProfileError,
	EventUpdatePassword, EventUpdatePasswordError,
	EventUpdateTOTP, EventUpdateTOTPError,
	EventVerifyEmail, EventVerifyEmailError,
	EventRemoveTOTP, EventRemoveTOTPError,
	EventRevokeGrant, EventRevokeGrantError,
	EventSendVerifyEmail, EventSendVerifyEmailError,
	EventSendResetPassword, EventSendResetPasswordError,
	EventSendIdentityProviderLink, EventSendIdentityProviderLinkError,
	EventResetPassword, EventResetPasswordError,
	EventRestartAuthentication, EventRestartAuthenticationError,
	EventInvalidSignature, EventInvalidSignatureError,
	EventRegisterNode, EventRegisterNodeError,
	EventUnregisterNode, EventUnregisterNodeError,
	EventUserInfoRequest, EventUserInfoRequestError,
	EventIdentityProviderLinkAccount, EventIdentityProviderLinkAccountError,
	EventIdentityProviderLogin, EventIdentityProviderLoginError,
	EventIdentityProviderFirstLogin, EventIdentityProviderFirstLoginError,
	EventIdentityProviderPostLogin, EventIdentityProviderPostLoginError,
	EventIdentityProviderResponse, EventIdentityProviderResponseError,
	EventIdentityProviderRetrieveToken, EventIdentityProviderRetrieveTokenError,
	EventImpersonate, EventImpersonateError,
	EventCustomRequiredAction, EventCustomRequiredActionError,
	EventExecuteActions, EventExecuteActionsError,
	EventExecuteActionToken, EventExecuteActionTokenError,
	EventClientInfo, EventClientInfoError,
	EventClientRegister, EventClientRegisterError,
	EventClientUpdate, EventClientUpdateError,
	EventClientDelete, EventClientDeleteError,
	EventClientInitiatedAccountLinking, EventClientInitiatedAccountLinkingError,
	EventTokenExchange, EventTokenExchangeError,
	EventPermissionToken, EventPermissionTokenError,
}

var operationKinds = []OperationKind{
	OperationCreate,
	OperationUpdate,
	OperationDelete,
	OperationAction,
}

// PromotedEventKinds are counted by dedicated counters with a provider label
// and never get a generic per-kind counter.
var PromotedEventKinds = []EventKind{
	EventLogin,
	EventLoginError,
	EventRegister,
}

// EventKinds returns the full user event vocabulary in declaration order.
func EventKinds() []EventKind {
	cloned := make([]EventKind, len(eventKinds))
	copy(cloned, eventKinds)
	return cloned
}

// OperationKinds returns the full admin operation vocabulary.
func OperationKinds() []OperationKind {
	cloned := make([]OperationKind, len(operationKinds))
	copy(cloned, operationKinds)
	return cloned
}

// IsPromoted reports whether the kind is counted by a dedicated counter.
func (kind EventKind) IsPromoted() bool {
	for _, promoted := range PromotedEventKinds {
		if kind == promoted {
			return true
		}
	}
	return false
}
