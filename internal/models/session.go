package models

type SessionState string

const (
	StateUninitialized         SessionState = "uninitialized"
	StateSiteConfigured        SessionState = "site_configured"
	StateAuthenticated         SessionState = "authenticated"
	StatePasswordResetRequired SessionState = "password_reset_required"
	StateUnauthenticated       SessionState = "unauthenticated"
)

// UserProfile is persisted as JSON under the user key.
type UserProfile struct {
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	FullName              string `json:"fullName"`
	EmployeeID            string `json:"employeeId"`
	RequiresPasswordReset bool   `json:"requiresPasswordReset"`
}

type SessionCredential struct {
	SiteURL   string      `json:"siteUrl"`
	APIKey    string      `json:"apiKey"`
	APISecret string      `json:"-"`
	Profile   UserProfile `json:"userProfile"`
}

// SessionSnapshot is the read-only view handed to callers.
type SessionSnapshot struct {
	State   SessionState `json:"state"`
	SiteURL string       `json:"siteUrl,omitempty"`
	Profile *UserProfile `json:"profile,omitempty"`
}

type LoginResult struct {
	RequiresPasswordReset bool        `json:"requiresPasswordReset"`
	Profile               UserProfile `json:"profile"`
}
