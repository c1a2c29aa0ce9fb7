package services

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
)

type ProfileServiceInterface interface {
	Profile(ctx context.Context) (*models.Employee, error)
}

type ProfileService struct {
	client    client.ResourceClientInterface
	directory EmployeeDirectoryInterface
}

func NewProfileService(rc client.ResourceClientInterface, directory EmployeeDirectoryInterface) *ProfileService {
	return &ProfileService{client: rc, directory: directory}
}

// Profile loads the full Employee document of the current user.
func (s *ProfileService) Profile(ctx context.Context) (*models.Employee, error) {
	employee, err := s.directory.CurrentEmployee(ctx)
	if err != nil {
		return nil, err
	}
	var doc models.Employee
	if err := s.client.Get(ctx, "Employee", employee.Name, &doc); err != nil {
		return nil, classifyRemote(err, "load profile")
	}
	return &doc, nil
}
