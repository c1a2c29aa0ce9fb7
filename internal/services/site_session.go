package services

import (
	"context"
	"errors"
	json "github.com/goccy/go-json"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/storage"
	"ess/internal/structures"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const (
	KeySiteURL   = "frappe_site_url"
	KeyUser      = "frappe_user"
	KeyAPIKey    = "frappe_api_key"
	KeyAPISecret = "frappe_api_secret"
	keyLegacySID = "frappe_sid"

	minPasswordLength = 8
)

var credentialKeys = []string{KeyUser, KeyAPIKey, KeyAPISecret, keyLegacySID}

type SiteSessionInterface interface {
	ConfigureSite(ctx context.Context, rawURL string) (string, error)
	Login(ctx context.Context, appID, appPassword string) (*models.LoginResult, error)
	VerifySession(ctx context.Context) bool
	ResetPassword(ctx context.Context, newPassword string) error
	Logout() error
	ResetSiteURL() error
	Restore(ctx context.Context) (models.SessionSnapshot, error)
	Snapshot() models.SessionSnapshot
	Profile() (models.UserProfile, bool)
	Credentials() (string, client.Credentials, bool)
	RequireAuthenticated() error
}

// SiteSession owns the site URL, the credentials and the user profile. It is
// the only writer of those store keys; opMu serialises every operation that
// writes them, mu guards the in-memory state.
type SiteSession struct {
	opMu sync.Mutex
	mu   sync.RWMutex

	state   models.SessionState
	siteURL string
	cred    *models.SessionCredential

	conf      structures.SiteConfig
	store     storage.Store
	transport *client.Transport
	device    DeviceIdentityInterface
	guard     *InFlight
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

func NewSiteSession(
	conf *structures.Config,
	store storage.Store,
	transport *client.Transport,
	device DeviceIdentityInterface,
	guard *InFlight,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) *SiteSession {
	s := &SiteSession{
		state:     models.StateUninitialized,
		conf:      conf.Site,
		store:     store,
		transport: transport,
		device:    device,
		guard:     guard,
		logger:    logger,
		metrics:   metrics,
	}
	metrics.SetSessionState(string(s.state))
	return s
}

// NormalizeSiteURL trims the input, drops trailing slashes and defaults the
// scheme to https.
func NormalizeSiteURL(raw string) (string, error) {
	normalized := strings.TrimSpace(raw)
	normalized = strings.TrimRight(normalized, "/")
	if normalized == "" {
		return "", validationError("Please enter your site URL.")
	}
	lower := strings.ToLower(normalized)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		normalized = "https://" + normalized
	}
	u, err := url.Parse(normalized)
	if err != nil || u.Host == "" {
		return "", validationError("Please enter a valid site URL.")
	}
	return normalized, nil
}

func (s *SiteSession) setState(state models.SessionState) {
	s.state = state
	s.metrics.SetSessionState(string(state))
}

// ConfigureSite probes the who-am-I endpoint without credentials. 200 and 403
// both prove the site exists.
func (s *SiteSession) ConfigureSite(ctx context.Context, rawURL string) (string, error) {
	siteURL, err := NormalizeSiteURL(rawURL)
	if err != nil {
		return "", err
	}

	release, err := s.guard.Acquire("session.configure", "")
	if err != nil {
		return "", err
	}
	defer release()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.logger.Infof(providers.TypeRemote, "Testing connection to %s", siteURL)
	err = s.transport.Do(ctx, siteURL, client.Request{
		Method:   http.MethodGet,
		Path:     client.MethodPath(s.conf.WhoAmIMethod),
		Resource: "probe",
	}, nil)
	if err != nil && !client.IsStatus(err, http.StatusForbidden) {
		s.logger.Warnf(providers.TypeRemote, "Site probe for %s failed: %v", siteURL, err)
		var netErr *client.NetworkError
		if errors.As(err, &netErr) {
			return "", newError(KindNetworkFailure, msgNetwork, err)
		}
		return "", newError(KindSiteUnreachable, "Unable to connect to the site. Please check the URL.", err)
	}

	s.mu.RLock()
	previous := s.siteURL
	s.mu.RUnlock()
	if previous != siteURL {
		if err := s.clearCredentials(); err != nil {
			return "", newError(KindServer, msgClearFailed, err)
		}
	}

	if err := s.store.Set(KeySiteURL, siteURL); err != nil {
		return "", newError(KindServer, "Unable to save the site URL.", err)
	}

	s.mu.Lock()
	s.siteURL = siteURL
	if s.cred == nil {
		s.setState(models.StateSiteConfigured)
	}
	s.mu.Unlock()

	s.logger.Infof(providers.TypeApp, "Site URL configured: %s", siteURL)
	return siteURL, nil
}

type loginRequest struct {
	Usr         string `json:"usr"`
	AppPassword string `json:"app_password"`
	DeviceID    string `json:"device_id"`
	DeviceModel string `json:"device_model"`
	DeviceBrand string `json:"device_brand"`
}

type loginData struct {
	EmployeeID           string      `json:"employee_id"`
	EmployeeName         string      `json:"employee_name"`
	User                 string      `json:"user"`
	APIKey               string      `json:"api_key"`
	APISecret            string      `json:"api_secret"`
	DeviceID             string      `json:"device_id"`
	AppID                string      `json:"app_id"`
	RequirePasswordReset models.Flag `json:"require_password_reset"`
}

type loginResponse struct {
	Message struct {
		Success models.Flag `json:"success"`
		Message string      `json:"message"`
		Data    *loginData  `json:"data"`
	} `json:"message"`
}

// Login exchanges the app id and app password for API credentials. A response
// that demands a password reset stores the credentials but withholds the
// authenticated state.
func (s *SiteSession) Login(ctx context.Context, appID, appPassword string) (*models.LoginResult, error) {
	appID = strings.TrimSpace(appID)
	if appID == "" || appPassword == "" {
		return nil, validationError("Please enter your App ID and app password.")
	}

	release, err := s.guard.Acquire("session.login", "")
	if err != nil {
		return nil, err
	}
	defer release()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	siteURL := s.siteURL
	s.mu.RUnlock()
	if siteURL == "" {
		return nil, validationError("Site URL not configured.")
	}

	device := s.device.DeviceInfo()
	s.logger.Infof(providers.TypePost, "Login attempt for %s from device %s", appID, device.DeviceID)

	var resp loginResponse
	err = s.transport.Do(ctx, siteURL, client.Request{
		Method: http.MethodPost,
		Path:   client.MethodPath(s.conf.LoginMethod),
		Body: loginRequest{
			Usr:         appID,
			AppPassword: appPassword,
			DeviceID:    device.DeviceID,
			DeviceModel: device.DeviceModel,
			DeviceBrand: device.DeviceBrand,
		},
		Resource: "login",
	}, &resp)
	if err != nil {
		return nil, s.loginFailure(err, "")
	}
	if !bool(resp.Message.Success) || resp.Message.Data == nil {
		msg := resp.Message.Message
		if msg == "" {
			msg = "Login failed"
		}
		return nil, s.loginFailure(nil, msg)
	}

	data := resp.Message.Data
	if data.APIKey == "" || data.APISecret == "" {
		return nil, newError(KindServer, "Login failed: the server returned no API credentials.", nil)
	}
	fullName := data.EmployeeName
	if fullName == "" {
		fullName = data.User
	}
	cred := &models.SessionCredential{
		SiteURL:   siteURL,
		APIKey:    data.APIKey,
		APISecret: data.APISecret,
		Profile: models.UserProfile{
			Name:                  appID,
			Email:                 data.User,
			FullName:              fullName,
			EmployeeID:            data.EmployeeID,
			RequiresPasswordReset: bool(data.RequirePasswordReset),
		},
	}
	if err := s.persistCredential(cred); err != nil {
		s.clearCredentials()
		return nil, newError(KindServer, "Unable to save your credentials.", err)
	}

	s.mu.Lock()
	s.cred = cred
	if cred.Profile.RequiresPasswordReset {
		s.setState(models.StatePasswordResetRequired)
	} else {
		s.setState(models.StateAuthenticated)
	}
	s.mu.Unlock()

	s.logger.Infof(providers.TypeApp, "Login successful for %s (employee %s, key %s, reset required: %t)",
		cred.Profile.Email, cred.Profile.EmployeeID, maskKey(cred.APIKey), cred.Profile.RequiresPasswordReset)
	return &models.LoginResult{
		RequiresPasswordReset: cred.Profile.RequiresPasswordReset,
		Profile:               cred.Profile,
	}, nil
}

// loginFailure classifies a failed login from the transport error or the
// backend's message text.
func (s *SiteSession) loginFailure(err error, message string) error {
	var netErr *client.NetworkError
	if errors.As(err, &netErr) {
		s.logger.Warnf(providers.TypeRemote, "Login failed: %v", err)
		return newError(KindNetworkFailure, msgNetwork, err)
	}

	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		message = httpErr.ServerMessage()
	}
	s.logger.Warnf(providers.TypePost, "Login rejected: %s", message)

	switch {
	case strings.Contains(message, "Access denied. This account is registered to a different device"):
		return newError(KindDeviceMismatch, message, err)
	case strings.Contains(message, "Employee Self Service is not enabled"),
		strings.Contains(message, "No employee record found"):
		return newError(KindAccessDisabled, message, err)
	case strings.Contains(message, "Invalid App ID"):
		return newError(KindInvalidCredentials, "Invalid App ID. Please check your credentials.", err)
	case strings.Contains(message, "User does not exist"):
		return newError(KindInvalidCredentials, "User does not exist. Please check your App ID.", err)
	case strings.Contains(message, "App password not set"):
		return newError(KindInvalidCredentials, "App password not set. Please contact your administrator.", err)
	case strings.Contains(message, "Invalid app password"):
		return newError(KindInvalidCredentials, "Invalid app password. Please try again.", err)
	case strings.Contains(message, "Network"):
		return newError(KindNetworkFailure, msgNetwork, err)
	}
	if httpErr != nil && httpErr.StatusCode >= http.StatusInternalServerError {
		return newError(KindServer, "Login failed. The server returned an error.", err)
	}
	return newError(KindInvalidCredentials, "Login failed. Please check your credentials.", err)
}

type employeeAccess struct {
	Name         string `json:"name"`
	EmployeeName string `json:"employee_name"`
	AllowESS     int    `json:"allow_ess"`
}

// VerifySession checks the stored credentials against who-am-I and then the
// employee's self-service flag. Any failure clears the credentials, keeping
// the site URL.
func (s *SiteSession) VerifySession(ctx context.Context) bool {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.verifyLocked(ctx)
}

func (s *SiteSession) verifyLocked(ctx context.Context) bool {
	s.mu.RLock()
	siteURL, cred := s.siteURL, s.cred
	s.mu.RUnlock()

	if siteURL == "" || cred == nil {
		return false
	}

	if err := s.checkRemoteAccess(ctx, siteURL, cred); err != nil {
		s.logger.Warnf(providers.TypeApp, "Session verification failed: %v", err)
		s.clearCredentials()
		return false
	}

	s.mu.Lock()
	if cred.Profile.RequiresPasswordReset {
		s.setState(models.StatePasswordResetRequired)
	} else {
		s.setState(models.StateAuthenticated)
	}
	s.mu.Unlock()
	s.logger.Infof(providers.TypeApp, "Session verified for %s", cred.Profile.Email)
	return true
}

func (s *SiteSession) checkRemoteAccess(ctx context.Context, siteURL string, cred *models.SessionCredential) error {
	creds := &client.Credentials{APIKey: cred.APIKey, APISecret: cred.APISecret}

	var who struct {
		Message string `json:"message"`
	}
	err := s.transport.Do(ctx, siteURL, client.Request{
		Method:      http.MethodGet,
		Path:        client.MethodPath(s.conf.WhoAmIMethod),
		Credentials: creds,
		Resource:    "whoami",
	}, &who)
	if err != nil {
		return fmt.Errorf("who-am-I: %w", err)
	}
	if who.Message == "" || who.Message == "Guest" {
		return errors.New("who-am-I resolved to no user")
	}

	query, err := client.ListOptions{
		Fields:  []string{"name", "employee_name", "allow_ess"},
		Filters: []client.Filter{client.Eq("user_id", who.Message)},
	}.Values()
	if err != nil {
		return err
	}
	var employees struct {
		Data []employeeAccess `json:"data"`
	}
	err = s.transport.Do(ctx, siteURL, client.Request{
		Method:      http.MethodGet,
		Path:        client.ResourcePath("Employee"),
		Query:       query,
		Credentials: creds,
		Resource:    "Employee",
	}, &employees)
	if err != nil {
		return fmt.Errorf("employee lookup: %w", err)
	}
	if len(employees.Data) == 0 {
		return fmt.Errorf("no employee record for %s", who.Message)
	}
	if employees.Data[0].AllowESS != 1 {
		return fmt.Errorf("self-service disabled for %s", employees.Data[0].Name)
	}
	return nil
}

type resetResponse struct {
	Message struct {
		Success models.Flag `json:"success"`
		Message string      `json:"message"`
	} `json:"message"`
}

// ResetPassword sets a new app password and completes a pending reset.
func (s *SiteSession) ResetPassword(ctx context.Context, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return validationError(fmt.Sprintf("Password must be at least %d characters long.", minPasswordLength))
	}

	release, err := s.guard.Acquire("session.reset_password", "")
	if err != nil {
		return err
	}
	defer release()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	siteURL, cred, state := s.siteURL, s.cred, s.state
	s.mu.RUnlock()
	if cred == nil || (state != models.StateAuthenticated && state != models.StatePasswordResetRequired) {
		return newError(KindUnauthenticated, "Not authenticated. Please log in.", nil)
	}

	var resp resetResponse
	err = s.transport.Do(ctx, siteURL, client.Request{
		Method:      http.MethodPost,
		Path:        client.MethodPath(s.conf.ResetPasswordMethod),
		Body:        map[string]string{"new_password": newPassword},
		Credentials: &client.Credentials{APIKey: cred.APIKey, APISecret: cred.APISecret},
		Resource:    "reset_password",
	}, &resp)
	if err != nil {
		return classifyRemote(err, "reset password")
	}
	if !bool(resp.Message.Success) {
		msg := resp.Message.Message
		if msg == "" {
			msg = "Password reset failed."
		}
		return newError(KindServer, msg, nil)
	}

	updated := *cred
	updated.Profile.RequiresPasswordReset = false
	if err := s.writeProfile(updated.Profile); err != nil {
		return newError(KindServer, "Password changed but the profile could not be saved.", err)
	}

	s.mu.Lock()
	s.cred = &updated
	s.setState(models.StateAuthenticated)
	s.mu.Unlock()
	s.logger.Infof(providers.TypeApp, "Password reset completed for %s", updated.Profile.Email)
	return nil
}

// Logout forgets the local credentials. Server-side API keys stay valid until
// an administrator revokes them.
func (s *SiteSession) Logout() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.clearCredentials(); err != nil {
		return newError(KindServer, msgClearFailed, err)
	}
	s.logger.Infof(providers.TypeApp, "Logged out")
	return nil
}

// ResetSiteURL clears the site URL and every credential.
func (s *SiteSession) ResetSiteURL() error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	var errs []error
	if err := s.store.Delete(KeySiteURL); err != nil {
		errs = append(errs, err)
	}
	if err := s.clearCredentials(); err != nil {
		errs = append(errs, err)
	}

	s.mu.Lock()
	s.siteURL = ""
	s.setState(models.StateUninitialized)
	s.mu.Unlock()
	if len(errs) > 0 {
		return newError(KindServer, msgClearFailed, errors.Join(errs...))
	}
	s.logger.Infof(providers.TypeApp, "Site URL reset")
	return nil
}

// Restore loads the persisted session at startup and verifies any stored
// credentials. A site URL from config is probed when none is stored.
func (s *SiteSession) Restore(ctx context.Context) (models.SessionSnapshot, error) {
	siteURL, ok, err := s.store.Get(KeySiteURL)
	if err != nil {
		return s.Snapshot(), fmt.Errorf("read site url: %w", err)
	}
	if !ok || siteURL == "" {
		if s.conf.URL == "" {
			return s.Snapshot(), nil
		}
		if _, err := s.ConfigureSite(ctx, s.conf.URL); err != nil {
			return s.Snapshot(), err
		}
		return s.Snapshot(), nil
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	s.siteURL = siteURL
	s.setState(models.StateSiteConfigured)
	s.mu.Unlock()

	cred, err := s.loadCredential(siteURL)
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Stored credentials unusable: %v", err)
		s.clearCredentials()
		return s.Snapshot(), nil
	}
	if cred == nil {
		return s.Snapshot(), nil
	}

	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()
	s.verifyLocked(ctx)
	return s.Snapshot(), nil
}

func (s *SiteSession) loadCredential(siteURL string) (*models.SessionCredential, error) {
	values := make(map[string]string, 3)
	for _, key := range []string{KeyUser, KeyAPIKey, KeyAPISecret} {
		val, ok, err := s.store.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok || val == "" {
			return nil, nil
		}
		values[key] = val
	}

	var profile models.UserProfile
	if err := json.Unmarshal([]byte(values[KeyUser]), &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &models.SessionCredential{
		SiteURL:   siteURL,
		APIKey:    values[KeyAPIKey],
		APISecret: values[KeyAPISecret],
		Profile:   profile,
	}, nil
}

func (s *SiteSession) persistCredential(cred *models.SessionCredential) error {
	if err := s.writeProfile(cred.Profile); err != nil {
		return err
	}
	if err := s.store.Set(KeyAPIKey, cred.APIKey); err != nil {
		return err
	}
	return s.store.Set(KeyAPISecret, cred.APISecret)
}

func (s *SiteSession) writeProfile(profile models.UserProfile) error {
	encoded, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	return s.store.Set(KeyUser, string(encoded))
}

// clearCredentials wipes every credential key and drops to Unauthenticated,
// or Uninitialized when no site is configured.
func (s *SiteSession) clearCredentials() error {
	var errs []error
	for _, key := range credentialKeys {
		if err := s.store.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}

	s.mu.Lock()
	s.cred = nil
	if s.siteURL == "" {
		s.setState(models.StateUninitialized)
	} else {
		s.setState(models.StateUnauthenticated)
	}
	s.mu.Unlock()

	if len(errs) > 0 {
		s.logger.Errorf(providers.TypeApp, "Failed to clear stored credentials: %v", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

func (s *SiteSession) Snapshot() models.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := models.SessionSnapshot{State: s.state, SiteURL: s.siteURL}
	if s.cred != nil {
		profile := s.cred.Profile
		snap.Profile = &profile
	}
	return snap
}

func (s *SiteSession) Profile() (models.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return models.UserProfile{}, false
	}
	return s.cred.Profile, true
}

// Credentials implements client.CredentialSource. Only an authenticated
// session yields credentials.
func (s *SiteSession) Credentials() (string, client.Credentials, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != models.StateAuthenticated || s.cred == nil {
		return "", client.Credentials{}, false
	}
	return s.siteURL, client.Credentials{APIKey: s.cred.APIKey, APISecret: s.cred.APISecret}, true
}

// RequireAuthenticated gates operations that need a fully authenticated
// session.
func (s *SiteSession) RequireAuthenticated() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.state {
	case models.StateAuthenticated:
		return nil
	case models.StatePasswordResetRequired:
		return newError(KindPasswordResetRequired, "Please reset your app password to continue.", nil)
	default:
		return newError(KindUnauthenticated, "Not authenticated. Please log in.", nil)
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
