package oauth2

import "encoding/json"

// TokenResponse represents a successful response from a provider token endpoint.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
type TokenResponse struct {
	// AccessToken is presented to the resource server.
	// Required.
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token, usually "Bearer".
	// Not interpreted by the refresh lifecycle.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Required: the absolute expiry is derived from it at the moment of issuance.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// RefreshToken is a rotated refresh token.
	// Optional: absence means the previous refresh token stays valid.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the space-separated list of granted scopes.
	// Not interpreted by the refresh lifecycle.
	Scope string `json:"scope,omitempty"`
}

// ErrorResponse is the error payload a token endpoint returns with a non-2xx status.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ParseErrorResponse decodes body as an ErrorResponse.
// It returns false when the body is not a JSON error payload.
func ParseErrorResponse(body []byte) (ErrorResponse, bool) {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error == "" {
		return ErrorResponse{}, false
	}
	return resp, true
}
