package authsdk

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterRequest is the body of POST /auth/register. Role is optional and
// defaults to "user".
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the optional body of POST /auth/logout. When present the
// refresh token is revoked along with the access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// TokenResponse is returned by login and refresh. RefreshToken is omitted
// on refresh unless the server rotates refresh tokens.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`

	// ExpiresIn is the lifetime of the access token's session in seconds.
	ExpiresIn int `json:"expires_in"`
}

// UserSummary is the public view of a user.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	TokenResponse
	User UserSummary `json:"user"`
}

// MeResponse describes the caller of GET /auth/me.
type MeResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserListItem struct {
	UserSummary
	CreatedAt time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users []UserListItem `json:"users"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set on
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports each dependency as "ok" or "error".
type HealthChecks struct {
	Database     string `json:"database"`
	SessionStore string `json:"session_store"`
}
