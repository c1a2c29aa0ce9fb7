package services

import (
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/structures"
	"ess/internal/testutil"
	"net/http"
	"testing"
	"time"
)

const (
	whoAmIPath   = "/api/method/" + providers.DefaultWhoAmIMethod
	loginPath    = "/api/method/" + providers.DefaultLoginMethod
	resetPath    = "/api/method/" + providers.DefaultResetPasswordMethod
	employeePath = "/api/resource/Employee"
	checkinPath  = "/api/resource/Employee Checkin"
)

func newTestConfig() *structures.Config {
	return &structures.Config{
		Site: structures.SiteConfig{
			Timeout:             5 * time.Second,
			WhoAmIMethod:        providers.DefaultWhoAmIMethod,
			LoginMethod:         providers.DefaultLoginMethod,
			ResetPasswordMethod: providers.DefaultResetPasswordMethod,
		},
		Attendance: structures.AttendanceConfig{Timezone: "UTC"},
	}
}

type fakeDevice struct{}

func (fakeDevice) GetOrCreateDeviceID() string { return "DEVICE123" }
func (fakeDevice) DeviceInfo() models.DeviceInfo {
	return models.DeviceInfo{DeviceID: "DEVICE123", DeviceModel: "Pixel 8", DeviceBrand: "Google"}
}

type sessionFixture struct {
	session *SiteSession
	site    *testutil.FakeSite
	store   *testutil.MockStore
	metrics *testutil.MockMetrics
	logger  *testutil.MockLogger
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	conf := newTestConfig()
	f := &sessionFixture{
		site:    testutil.NewFakeSite(t),
		store:   testutil.NewMockStore(),
		metrics: testutil.NewMockMetrics(),
		logger:  &testutil.MockLogger{},
	}
	transport := client.NewTransport(conf, f.logger, f.metrics)
	f.session = NewSiteSession(conf, f.store, transport, fakeDevice{}, NewInFlight(), f.logger, f.metrics)
	return f
}

func loginOK(resetRequired int) map[string]any {
	return map[string]any{
		"message": map[string]any{
			"success": true,
			"message": "Login successful",
			"data": map[string]any{
				"employee_id":            "HR-EMP-0001",
				"employee_name":          "Jane Doe",
				"user":                   "jane@example.com",
				"api_key":                "apikey123",
				"api_secret":             "apisecret456",
				"device_id":              "DEVICE123",
				"app_id":                 "jane",
				"require_password_reset": resetRequired,
			},
		},
	}
}

func (f *sessionFixture) withWhoAmI(status int, user string) {
	f.site.JSON(http.MethodGet, whoAmIPath, status, map[string]string{"message": user})
}

func (f *sessionFixture) withEmployeeAccess(allowESS int) {
	f.site.JSON(http.MethodGet, employeePath, http.StatusOK, map[string]any{
		"data": []map[string]any{{"name": "HR-EMP-0001", "employee_name": "Jane Doe", "allow_ess": allowESS}},
	})
}

// loggedIn configures the site and logs in with the given reset flag.
func (f *sessionFixture) loggedIn(t *testing.T, resetRequired int) {
	t.Helper()
	f.site.JSON(http.MethodGet, whoAmIPath, http.StatusForbidden, map[string]string{"exc_type": "PermissionError"})
	f.site.JSON(http.MethodPost, loginPath, http.StatusOK, loginOK(resetRequired))
	if _, err := f.session.ConfigureSite(t.Context(), f.site.URL); err != nil {
		t.Fatalf("configure site: %v", err)
	}
	if _, err := f.session.Login(t.Context(), "jane", "app-password"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

type authedSource struct{ url string }

func (a authedSource) Credentials() (string, client.Credentials, bool) {
	return a.url, client.Credentials{APIKey: "k", APISecret: "s"}, true
}

type staticProfile struct {
	profile models.UserProfile
	ok      bool
}

func (p staticProfile) Profile() (models.UserProfile, bool) { return p.profile, p.ok }

var janeProfile = staticProfile{profile: models.UserProfile{Email: "jane@example.com", EmployeeID: "EMP-1"}, ok: true}

type hrFixture struct {
	conf      *structures.Config
	site      *testutil.FakeSite
	rc        *client.ResourceClient
	directory *EmployeeDirectory
	guard     *InFlight
	logger    *testutil.MockLogger
	now       time.Time
}

func newHRFixture(t *testing.T, employee map[string]any) *hrFixture {
	t.Helper()
	f := &hrFixture{
		conf:   newTestConfig(),
		site:   testutil.NewFakeSite(t),
		guard:  NewInFlight(),
		logger: &testutil.MockLogger{},
		now:    time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC),
	}
	f.rc = client.NewResourceClient(client.NewTransport(f.conf, f.logger, testutil.NewMockMetrics()), authedSource{url: f.site.URL})
	f.directory = NewEmployeeDirectory(f.rc, janeProfile)
	data := []map[string]any{}
	if employee != nil {
		data = append(data, employee)
	}
	f.site.JSON(http.MethodGet, employeePath, http.StatusOK, map[string]any{"data": data})
	return f
}

func checkin(name, ts, logType string) map[string]string {
	return map[string]string{"name": name, "employee": "EMP-1", "time": ts, "log_type": logType}
}
