package services

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/structures"
	"time"
)

const (
	checkinDoctype    = "Employee Checkin"
	todayRecordLimit  = 100
	monthRecordLimit  = 2000
	dayStartClock     = " 00:00:00"
	dayEndClock       = " 23:59:59"
	minAttendanceYear = 1970
)

var checkinFields = []string{"name", "employee", "time", "log_type"}

type AttendanceServiceInterface interface {
	Today(ctx context.Context) (*models.TodayAttendance, error)
	Toggle(ctx context.Context, location string) (*models.TodayAttendance, error)
	Month(ctx context.Context, year, month int) (*models.MonthlyAttendance, error)
}

type AttendanceService struct {
	client    client.ResourceClientInterface
	directory EmployeeDirectoryInterface
	guard     *InFlight
	logger    providers.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewAttendanceService(
	conf *structures.Config,
	rc client.ResourceClientInterface,
	directory EmployeeDirectoryInterface,
	guard *InFlight,
	logger providers.Logger,
) *AttendanceService {
	return &AttendanceService{
		client:    rc,
		directory: directory,
		guard:     guard,
		logger:    logger,
		loc:       conf.Location(),
		now:       time.Now,
	}
}

func (s *AttendanceService) Today(ctx context.Context) (*models.TodayAttendance, error) {
	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}
	return s.today(ctx, employee.Name)
}

func (s *AttendanceService) today(ctx context.Context, employee string) (*models.TodayAttendance, error) {
	day := s.now().In(s.loc).Format(dateLayout)

	var remote []models.RemoteCheckin
	err := s.client.List(ctx, checkinDoctype, client.ListOptions{
		Fields: checkinFields,
		Filters: []client.Filter{
			client.Eq("employee", employee),
			client.Between("creation", day+dayStartClock, day+dayEndClock),
		},
		OrderBy: "creation asc",
		Limit:   todayRecordLimit,
	}, &remote)
	if err != nil {
		return nil, classifyRemote(err, "load today's attendance")
	}

	records := s.decode(remote)
	return &models.TodayAttendance{
		Employee: employee,
		Date:     day,
		State:    CurrentDayCheckState(records),
		Records:  records,
	}, nil
}

// Toggle records the next check-in or check-out for today. At most one toggle
// per employee runs at a time.
func (s *AttendanceService) Toggle(ctx context.Context, location string) (*models.TodayAttendance, error) {
	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire("attendance.toggle", employee.Name)
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := s.today(ctx, employee.Name)
	if err != nil {
		return nil, err
	}
	if current.State.IsComplete || current.State.NextAction == "" {
		return nil, validationError("You have already checked in and out today.")
	}

	logType := current.State.NextAction
	checkin := models.NewCheckin{
		Employee: employee.Name,
		Time:     models.FormatFrappeTime(s.now().In(s.loc)),
		LogType:  string(logType),
		DeviceID: location,
	}
	if err := s.client.Create(ctx, checkinDoctype, checkin, nil); err != nil {
		return nil, classifyRemote(err, "record "+string(logType))
	}
	s.logger.Infof(providers.TypePost, "Recorded %s for %s at %s", logType, employee.Name, checkin.Time)

	return s.today(ctx, employee.Name)
}

// Month reconciles every day of the given month for the current employee.
func (s *AttendanceService) Month(ctx context.Context, year, month int) (*models.MonthlyAttendance, error) {
	if month < 1 || month > 12 || year < minAttendanceYear || year > 9999 {
		return nil, validationError("Please choose a valid month.")
	}
	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}

	m := time.Month(month)
	first := time.Date(year, m, 1, 0, 0, 0, 0, s.loc)
	last := time.Date(year, m, DaysInMonth(year, m), 0, 0, 0, 0, s.loc)

	var remote []models.RemoteCheckin
	err = s.client.List(ctx, checkinDoctype, client.ListOptions{
		Fields: checkinFields,
		Filters: []client.Filter{
			client.Eq("employee", employee.Name),
			client.Between("time", first.Format(dateLayout)+dayStartClock, last.Format(dateLayout)+dayEndClock),
		},
		OrderBy: "time asc",
		Limit:   monthRecordLimit,
	}, &remote)
	if err != nil {
		return nil, classifyRemote(err, "load monthly attendance")
	}

	result := ReconcileMonth(s.decode(remote), year, m, s.loc)
	return &result, nil
}

// decode drops records the backend returned in an unreadable shape.
func (s *AttendanceService) decode(remote []models.RemoteCheckin) []models.CheckinRecord {
	records := make([]models.CheckinRecord, 0, len(remote))
	for _, r := range remote {
		rec, err := r.Record(s.loc)
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "Skipping checkin: %v", err)
			continue
		}
		records = append(records, rec)
	}
	return records
}
