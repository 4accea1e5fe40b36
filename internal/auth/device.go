package auth

import "time"

// DeviceGrant holds the server's answer to a device authorization request.
// It lives only in memory for the duration of one login attempt.
type DeviceGrant struct {
	// DeviceCode is submitted on every poll and never shown to the user.
	DeviceCode string
	// UserCode is the short code the user types on the verification page.
	UserCode        string
	VerificationURI string
	// VerificationURIComplete is optional; it pre-fills the user code.
	VerificationURIComplete string
	ExpiresIn               int // seconds, as sent by the server
	Interval                int // minimum polling interval in seconds
	// Deadline is the absolute expiry, computed when the grant was received.
	Deadline time.Time
}

// BrowserURL returns the URL to open for the user, preferring the pre-filled variant.
func (g DeviceGrant) BrowserURL() string {
	if g.VerificationURIComplete != "" {
		return g.VerificationURIComplete
	}
	return g.VerificationURI
}

// TokenResponse holds the tokens returned after successful authorization.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// PollEvent reports progress of the polling loop. Observers must not block.
type PollEvent struct {
	Attempt  int
	State    PollState
	Code     string        // OAuth error code of the last response, if any
	Interval time.Duration // wait applied before the next attempt
	Deadline time.Time
}

// ProgressFunc receives PollEvents while PollForToken runs.
type ProgressFunc func(PollEvent)
