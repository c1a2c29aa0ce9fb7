package services

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
)

// ProfileSource exposes the profile of the current session.
type ProfileSource interface {
	Profile() (models.UserProfile, bool)
}

type EmployeeDirectoryInterface interface {
	CurrentEmployee(ctx context.Context) (models.Employee, error)
}

// EmployeeDirectory resolves the Employee document linked to the logged-in user.
type EmployeeDirectory struct {
	client  client.ResourceClientInterface
	session ProfileSource
}

func NewEmployeeDirectory(rc client.ResourceClientInterface, session ProfileSource) *EmployeeDirectory {
	return &EmployeeDirectory{client: rc, session: session}
}

func (d *EmployeeDirectory) CurrentEmployee(ctx context.Context) (models.Employee, error) {
	profile, ok := d.session.Profile()
	if !ok || profile.Email == "" {
		return models.Employee{}, newError(KindUnauthenticated, "Not authenticated. Please log in.", client.ErrUnauthenticated)
	}

	var employees []models.Employee
	err := d.client.List(ctx, "Employee", client.ListOptions{
		Fields:  []string{"name", "employee_name", "user_id", "status", "holiday_list"},
		Filters: []client.Filter{client.Eq("user_id", profile.Email)},
		Limit:   1,
	}, &employees)
	if err != nil {
		return models.Employee{}, classifyRemote(err, "load employee")
	}
	if len(employees) == 0 {
		return models.Employee{}, newError(KindAccessDisabled, "Employee information not found for your account.", nil)
	}
	return employees[0], nil
}
