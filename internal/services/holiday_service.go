package services

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/structures"
	"fmt"
	"sort"
	"time"
)

const upcomingHolidays = 3

type HolidayServiceInterface interface {
	Holidays(ctx context.Context) (*models.HolidayOverview, error)
}

type HolidayService struct {
	client    client.ResourceClientInterface
	directory EmployeeDirectoryInterface
	logger    providers.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewHolidayService(conf *structures.Config, rc client.ResourceClientInterface, directory EmployeeDirectoryInterface, logger providers.Logger) *HolidayService {
	return &HolidayService{
		client:    rc,
		directory: directory,
		logger:    logger,
		loc:       conf.Location(),
		now:       time.Now,
	}
}

// Holidays returns this year's holidays from the employee's holiday list,
// falling back to the first list covering the year.
func (s *HolidayService) Holidays(ctx context.Context) (*models.HolidayOverview, error) {
	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.loc)
	overview := &models.HolidayOverview{Year: now.Year(), All: []models.HolidayEntry{}, Upcoming: []models.HolidayEntry{}}

	listName := employee.HolidayList
	if listName == "" {
		listName, err = s.listForYear(ctx, now.Year())
		if err != nil {
			return nil, err
		}
		if listName == "" {
			s.logger.Debugf(providers.TypeApp, "No holiday list covers %d", now.Year())
			return overview, nil
		}
	}

	var list models.HolidayList
	if err := s.client.Get(ctx, "Holiday List", listName, &list); err != nil {
		return nil, classifyRemote(err, "load holidays")
	}
	overview.ListName = list.Name

	today := civilDay(now, s.loc)
	for _, h := range list.Holidays {
		date, err := time.ParseInLocation(dateLayout, h.HolidayDate, s.loc)
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "Skipping holiday %q: %v", h.Description, err)
			continue
		}
		if date.Year() != now.Year() {
			continue
		}
		daysUntil := int(civilDay(date, s.loc).Sub(today).Hours() / 24)
		overview.All = append(overview.All, models.HolidayEntry{
			Date:        date,
			Description: h.Description,
			WeeklyOff:   h.WeeklyOff == 1,
			Label:       relativeLabel(daysUntil),
			DaysUntil:   daysUntil,
		})
	}
	sort.SliceStable(overview.All, func(i, j int) bool {
		return overview.All[i].Date.Before(overview.All[j].Date)
	})

	for _, h := range overview.All {
		if h.DaysUntil < 0 {
			continue
		}
		overview.Upcoming = append(overview.Upcoming, h)
		if len(overview.Upcoming) == upcomingHolidays {
			break
		}
	}
	return overview, nil
}

func (s *HolidayService) listForYear(ctx context.Context, year int) (string, error) {
	var lists []models.HolidayList
	err := s.client.List(ctx, "Holiday List", client.ListOptions{
		Fields: []string{"name", "from_date", "to_date"},
		Filters: []client.Filter{
			{Field: "from_date", Operator: "<=", Value: fmt.Sprintf("%d-12-31", year)},
			{Field: "to_date", Operator: ">=", Value: fmt.Sprintf("%d-01-01", year)},
		},
		OrderBy: "from_date desc",
		Limit:   1,
	}, &lists)
	if err != nil {
		return "", classifyRemote(err, "load holiday lists")
	}
	if len(lists) == 0 {
		return "", nil
	}
	return lists[0].Name, nil
}

func civilDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func relativeLabel(daysUntil int) string {
	switch {
	case daysUntil == 0:
		return "Today"
	case daysUntil == 1:
		return "Tomorrow"
	case daysUntil > 1:
		return fmt.Sprintf("In %d days", daysUntil)
	default:
		return "Past"
	}
}
