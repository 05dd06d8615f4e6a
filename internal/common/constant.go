package common

// AuthorizationHeaderName carries the bearer token on requests to the API.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only accepted authorization scheme.
const BearerScheme = "Bearer"

// SessionCredentialKey is the logical key of the single stored session
// credential.
const SessionCredentialKey = "session_credential"
