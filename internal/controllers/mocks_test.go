package controllers

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	snapshot   models.SessionSnapshot
	gate       error
	configured string
	configErr  error
	login      *models.LoginResult
	loginErr   error
	loginArgs  []string
	valid      bool
	resetErr   error
	password   string
	logouts    int
	logoutErr  error
	siteResets int
	resetSite  error
}

func (m *mockSession) ConfigureSite(_ context.Context, rawURL string) (string, error) {
	if m.configErr != nil {
		return "", m.configErr
	}
	m.configured = rawURL
	return "https://" + rawURL, nil
}

func (m *mockSession) Login(_ context.Context, appID, appPassword string) (*models.LoginResult, error) {
	m.loginArgs = []string{appID, appPassword}
	return m.login, m.loginErr
}

func (m *mockSession) VerifySession(_ context.Context) bool { return m.valid }

func (m *mockSession) ResetPassword(_ context.Context, newPassword string) error {
	m.password = newPassword
	return m.resetErr
}

func (m *mockSession) Logout() error {
	m.logouts++
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.snapshot = models.SessionSnapshot{State: models.StateUnauthenticated, SiteURL: m.snapshot.SiteURL}
	return nil
}

func (m *mockSession) ResetSiteURL() error {
	m.siteResets++
	if m.resetSite != nil {
		return m.resetSite
	}
	m.snapshot = models.SessionSnapshot{State: models.StateUninitialized}
	return nil
}

func (m *mockSession) Restore(_ context.Context) (models.SessionSnapshot, error) {
	return m.snapshot, nil
}

func (m *mockSession) Snapshot() models.SessionSnapshot { return m.snapshot }

func (m *mockSession) Profile() (models.UserProfile, bool) {
	if m.snapshot.Profile == nil {
		return models.UserProfile{}, false
	}
	return *m.snapshot.Profile, true
}

func (m *mockSession) Credentials() (string, client.Credentials, bool) {
	return "", client.Credentials{}, false
}

func (m *mockSession) RequireAuthenticated() error { return m.gate }

type mockAttendance struct {
	today     *models.TodayAttendance
	month     *models.MonthlyAttendance
	err       error
	location  string
	monthArgs []int
}

func (m *mockAttendance) Today(_ context.Context) (*models.TodayAttendance, error) {
	return m.today, m.err
}

func (m *mockAttendance) Toggle(_ context.Context, location string) (*models.TodayAttendance, error) {
	m.location = location
	return m.today, m.err
}

func (m *mockAttendance) Month(_ context.Context, year, month int) (*models.MonthlyAttendance, error) {
	m.monthArgs = []int{year, month}
	return m.month, m.err
}

type mockLeave struct {
	types   []models.LeaveType
	result  *models.LeaveResult
	err     error
	request models.LeaveRequest
}

func (m *mockLeave) LeaveTypes(_ context.Context) ([]models.LeaveType, error) {
	return m.types, m.err
}

func (m *mockLeave) Apply(_ context.Context, req models.LeaveRequest) (*models.LeaveResult, error) {
	m.request = req
	return m.result, m.err
}

type mockHolidays struct {
	overview *models.HolidayOverview
	err      error
}

func (m *mockHolidays) Holidays(_ context.Context) (*models.HolidayOverview, error) {
	return m.overview, m.err
}

type mockProfile struct {
	employee *models.Employee
	err      error
}

func (m *mockProfile) Profile(_ context.Context) (*models.Employee, error) {
	return m.employee, m.err
}

type mockUpdates struct {
	updates []models.Update
	err     error
}

func (m *mockUpdates) Recent(_ context.Context) ([]models.Update, error) {
	return m.updates, m.err
}

type mockDevice struct{}

func (m *mockDevice) GetOrCreateDeviceID() string { return "device-123" }
func (m *mockDevice) DeviceInfo() models.DeviceInfo {
	return models.DeviceInfo{DeviceID: "device-123", DeviceModel: "Unknown Model", DeviceBrand: "Unknown Brand"}
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Kind    string          `json:"kind"`
}

func serve(t *testing.T, h http.HandlerFunc, method, target, body string) (*httptest.ResponseRecorder, response) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h(rr, req)

	var resp response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	return rr, resp
}

func gateError(kind services.ErrorKind) error {
	return &services.Error{Kind: kind, Message: "blocked"}
}
