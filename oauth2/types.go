package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Completed by the authorization layer before a session reaches this service;
	// its result arrives as the initial grant.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: client_id, client_secret, grant_type, refresh_token
	// Returns: new access_token and expires_in, optionally a rotated refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// Form field names sent to the token endpoint.
const (
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamGrantType    = "grant_type"
	ParamRefreshToken = "refresh_token"
)

// Error codes a token endpoint may answer with (RFC 6749 section 5.2).
const (
	ErrorInvalidRequest       = "invalid_request"
	ErrorInvalidClient        = "invalid_client"
	ErrorInvalidGrant         = "invalid_grant"
	ErrorUnauthorizedClient   = "unauthorized_client"
	ErrorUnsupportedGrantType = "unsupported_grant_type"
	ErrorInvalidScope         = "invalid_scope"
)
