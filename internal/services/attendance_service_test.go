package services

import (
	"context"
	"ess/internal/models"
	"ess/internal/testutil"
	"net/http"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttendanceFixture(t *testing.T) (*AttendanceService, *hrFixture) {
	f := newHRFixture(t, map[string]any{"name": "EMP-1", "employee_name": "Jane Doe"})
	svc := NewAttendanceService(f.conf, f.rc, f.directory, f.guard, f.logger)
	svc.now = func() time.Time { return f.now }
	return svc, f
}

// checkinBackend keeps created checkins and lists them back.
type checkinBackend struct {
	mu      sync.Mutex
	records []map[string]string
}

func (b *checkinBackend) register(site *testutil.FakeSite) {
	site.Handle(http.MethodGet, checkinPath, func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"data": b.records})
	})
	site.Handle(http.MethodPost, checkinPath, func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]string
		_ = json.NewDecoder(r.Body).Decode(&doc)
		b.mu.Lock()
		doc["name"] = "CHK-NEW"
		b.records = append(b.records, doc)
		b.mu.Unlock()
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"data": doc})
	})
}

func TestAttendanceService_Today(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	backend := &checkinBackend{records: []map[string]string{checkin("CHK-1", "2024-03-04 09:05:00", "IN")}}
	backend.register(f.site)

	today, err := svc.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EMP-1", today.Employee)
	assert.Equal(t, "2024-03-04", today.Date)
	assert.True(t, today.State.IsCheckedIn)
	assert.Equal(t, models.LogTypeOut, today.State.NextAction)
	require.Len(t, today.Records, 1)

	req, _ := f.site.Last(http.MethodGet, checkinPath)
	assert.Equal(t, `[["employee","=","EMP-1"],["creation","between",["2024-03-04 00:00:00","2024-03-04 23:59:59"]]]`, req.Query["filters"][0])
	assert.Equal(t, "creation asc", req.Query["order_by"][0])
}

func TestAttendanceService_ToggleChecksInThenOut(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	backend := &checkinBackend{}
	backend.register(f.site)

	state, err := svc.Toggle(context.Background(), "9.0054,38.7636")
	require.NoError(t, err)
	assert.True(t, state.State.IsCheckedIn)

	req, _ := f.site.Last(http.MethodPost, checkinPath)
	assert.JSONEq(t, `{"employee":"EMP-1","time":"2024-03-04 12:00:00","log_type":"IN","device_id":"9.0054,38.7636"}`, string(req.Body))

	f.now = f.now.Add(5 * time.Hour)
	state, err = svc.Toggle(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, state.State.IsComplete)

	req, _ = f.site.Last(http.MethodPost, checkinPath)
	assert.JSONEq(t, `{"employee":"EMP-1","time":"2024-03-04 17:00:00","log_type":"OUT"}`, string(req.Body))
}

func TestAttendanceService_ToggleRefusesCompleteDay(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	backend := &checkinBackend{records: []map[string]string{
		checkin("CHK-1", "2024-03-04 09:00:00", "IN"),
		checkin("CHK-2", "2024-03-04 11:00:00", "OUT"),
	}}
	backend.register(f.site)

	_, err := svc.Toggle(context.Background(), "")
	assertKind(t, err, KindValidation)
	assert.Zero(t, f.site.Calls(http.MethodPost, checkinPath))
}

func TestAttendanceService_ToggleRejectsOverlap(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	(&checkinBackend{}).register(f.site)

	release, err := f.guard.Acquire("attendance.toggle", "EMP-1")
	require.NoError(t, err)
	defer release()

	_, err = svc.Toggle(context.Background(), "")
	assertKind(t, err, KindOperationInProgress)
	assert.Zero(t, f.site.Calls(http.MethodPost, checkinPath))
}

func TestAttendanceService_ToggleServerError(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	f.site.JSON(http.MethodGet, checkinPath, http.StatusOK, map[string]any{"data": []any{}})
	f.site.JSON(http.MethodPost, checkinPath, http.StatusExpectationFailed, map[string]any{"message": "Employee is inactive"})

	_, err := svc.Toggle(context.Background(), "")
	assertKind(t, err, KindServer)
	assert.Contains(t, UserMessage(err), "Employee is inactive")
	assert.False(t, f.guard.Busy("attendance.toggle", "EMP-1"))
}

func TestAttendanceService_Month(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	f.site.JSON(http.MethodGet, checkinPath, http.StatusOK, map[string]any{"data": []map[string]string{
		checkin("CHK-1", "2024-02-01 09:00:00", "IN"),
		checkin("CHK-2", "2024-02-01 17:30:00", "OUT"),
		checkin("CHK-3", "02-02-2024 09:00:00", "IN"),
		checkin("CHK-4", "garbage", "IN"),
	}})

	month, err := svc.Month(context.Background(), 2024, 2)
	require.NoError(t, err)
	require.Len(t, month.Days, 29)
	assert.Equal(t, models.StatusPresent, month.Days[0].Status)
	assert.Equal(t, "8h 30m", month.Days[0].WorkingHours)
	assert.Equal(t, models.StatusIncomplete, month.Days[1].Status)
	assert.Equal(t, 1, month.Summary.PresentDays)
	assert.Equal(t, 3.4, month.Summary.AttendancePercentage)
	assert.Equal(t, 1, f.logger.Count("warn"))

	req, _ := f.site.Last(http.MethodGet, checkinPath)
	assert.Equal(t, `[["employee","=","EMP-1"],["time","between",["2024-02-01 00:00:00","2024-02-29 23:59:59"]]]`, req.Query["filters"][0])
	assert.Equal(t, "time asc", req.Query["order_by"][0])
}

func TestAttendanceService_MonthValidation(t *testing.T) {
	svc, f := newAttendanceFixture(t)
	for _, m := range [][2]int{{2024, 0}, {2024, 13}, {1900, 5}} {
		_, err := svc.Month(context.Background(), m[0], m[1])
		assertKind(t, err, KindValidation)
	}
	assert.Empty(t, f.site.Requests())
}
