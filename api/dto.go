package api

import "time"

// CredentialsRequest is the body of register and login. Blank values are
// rejected by the credential service, not here, so both endpoints return
// the same "Username and password required." message.
type CredentialsRequest struct {
	Username string `json:"username" validate:"max=150,nocontrol"`
	Password string `json:"password" validate:"max=1024"`
}

// RegisterResponse is the empty object returned by a successful register.
type RegisterResponse struct{}

// LoginResponse carries the signed bearer token.
type LoginResponse struct {
	Token string `json:"token"`
}

// MeResponse describes the caller as seen in their token.
type MeResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
