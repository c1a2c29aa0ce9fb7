package services

import (
	"context"
	"errors"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/structures"
	"github.com/go-playground/validator/v10"
	"strings"
	"time"
)

const leaveTypeLimit = 100

var defaultLeaveTypes = []models.LeaveType{
	{Name: "Annual Leave", LeaveTypeName: "Annual Leave", MaxLeavesAllowed: 21},
	{Name: "Sick Leave", LeaveTypeName: "Sick Leave", MaxLeavesAllowed: 12},
	{Name: "Casual Leave", LeaveTypeName: "Casual Leave", MaxLeavesAllowed: 12},
}

var leaveFieldMessages = map[string]string{
	"LeaveType": "Please select a leave type.",
	"Reason":    "Please provide a reason for leave.",
	"FromDate":  "Please provide a valid from date (YYYY-MM-DD).",
	"ToDate":    "Please provide a valid to date (YYYY-MM-DD).",
}

type LeaveServiceInterface interface {
	LeaveTypes(ctx context.Context) ([]models.LeaveType, error)
	Apply(ctx context.Context, req models.LeaveRequest) (*models.LeaveResult, error)
}

type LeaveService struct {
	client    client.ResourceClientInterface
	directory EmployeeDirectoryInterface
	guard     *InFlight
	validate  *validator.Validate
	logger    providers.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewLeaveService(
	conf *structures.Config,
	rc client.ResourceClientInterface,
	directory EmployeeDirectoryInterface,
	guard *InFlight,
	logger providers.Logger,
) *LeaveService {
	return &LeaveService{
		client:    rc,
		directory: directory,
		guard:     guard,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
		loc:       conf.Location(),
		now:       time.Now,
	}
}

// LeaveTypes lists the configured leave types, or a default set when the
// backend has none.
func (s *LeaveService) LeaveTypes(ctx context.Context) ([]models.LeaveType, error) {
	var types []models.LeaveType
	err := s.client.List(ctx, "Leave Type", client.ListOptions{
		Fields: []string{"name", "leave_type_name", "max_leaves_allowed", "is_earned_leave"},
		Limit:  leaveTypeLimit,
	}, &types)
	if err != nil {
		return nil, classifyRemote(err, "load leave types")
	}
	if len(types) == 0 {
		s.logger.Debugf(providers.TypeApp, "No leave types on site, using defaults")
		out := make([]models.LeaveType, len(defaultLeaveTypes))
		copy(out, defaultLeaveTypes)
		return out, nil
	}
	return types, nil
}

func (s *LeaveService) Apply(ctx context.Context, req models.LeaveRequest) (*models.LeaveResult, error) {
	req.Reason = strings.TrimSpace(req.Reason)
	req.LeaveType = strings.TrimSpace(req.LeaveType)
	if err := s.validate.Struct(req); err != nil {
		return nil, leaveValidationError(err)
	}

	from, _ := time.ParseInLocation(dateLayout, req.FromDate, s.loc)
	to, _ := time.ParseInLocation(dateLayout, req.ToDate, s.loc)
	if from.After(to) {
		return nil, validationError("From date cannot be after to date.")
	}

	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}

	release, err := s.guard.Acquire("leave.apply", employee.Name)
	if err != nil {
		return nil, err
	}
	defer release()

	application := models.LeaveApplication{
		Employee:    employee.Name,
		LeaveType:   req.LeaveType,
		FromDate:    req.FromDate,
		ToDate:      req.ToDate,
		PostingDate: s.now().In(s.loc).Format(dateLayout),
		Reason:      req.Reason,
		HalfDay:     0,
		Status:      "Open",
	}

	var created models.LeaveApplication
	if err := s.client.Create(ctx, "Leave Application", application, &created); err != nil {
		return nil, classifyRemote(err, "submit leave application")
	}
	if created.Name == "" {
		created = application
	}

	days := LeaveDays(from, to)
	s.logger.Infof(providers.TypePost, "Leave application %s submitted for %s (%d days)", created.Name, employee.Name, days)
	return &models.LeaveResult{Application: created, Days: days}, nil
}

// LeaveDays counts calendar dates from from to to inclusive, at least one.
// Dates are compared in their own zones so DST shifts do not add a day.
func LeaveDays(from, to time.Time) int {
	days := int(civilDay(to, to.Location()).Sub(civilDay(from, from.Location())).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

func leaveValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := leaveFieldMessages[fieldErrs[0].Field()]; ok {
			return newError(KindValidation, msg, err)
		}
	}
	return newError(KindValidation, "Please check the leave details.", err)
}
