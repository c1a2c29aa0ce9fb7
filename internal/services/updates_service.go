package services

import (
	"context"
	"ess/internal/client"
	"ess/internal/models"
	"ess/internal/providers"
	"ess/internal/structures"
	"fmt"
	"net/http"
	"time"
)

const recentUpdatesLimit = 50

type UpdatesServiceInterface interface {
	Recent(ctx context.Context) ([]models.Update, error)
}

// UpdatesService reads the newest Activity Log entries.
type UpdatesService struct {
	client client.ResourceClientInterface
	logger providers.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewUpdatesService(conf *structures.Config, rc client.ResourceClientInterface, logger providers.Logger) *UpdatesService {
	return &UpdatesService{
		client: rc,
		logger: logger,
		loc:    conf.Location(),
		now:    time.Now,
	}
}

// Recent lists up to 50 entries, newest first. A site without the Activity
// Log doctype has no updates.
func (s *UpdatesService) Recent(ctx context.Context) ([]models.Update, error) {
	var entries []models.ActivityEntry
	err := s.client.List(ctx, "Activity Log", client.ListOptions{
		Fields:  []string{"name", "subject", "content", "creation", "user"},
		OrderBy: "creation desc",
		Limit:   recentUpdatesLimit,
	}, &entries)
	if client.IsStatus(err, http.StatusNotFound) {
		s.logger.Warnf(providers.TypeRemote, "Activity Log is not available on this site")
		return []models.Update{}, nil
	}
	if err != nil {
		return nil, classifyRemote(err, "load updates")
	}

	now := s.now()
	updates := make([]models.Update, 0, len(entries))
	for _, e := range entries {
		created, err := models.ParseFrappeTime(e.Creation, s.loc)
		if err != nil {
			s.logger.Warnf(providers.TypeRemote, "Skipping update %s: %v", e.Name, err)
			continue
		}
		updates = append(updates, models.Update{
			Name:      e.Name,
			Subject:   e.Subject,
			Content:   e.Content,
			User:      e.User,
			CreatedAt: created,
			Age:       timeAgo(now.Sub(created)),
		})
	}
	return updates, nil
}

func timeAgo(d time.Duration) string {
	hours := int(d.Hours())
	days := hours / 24
	switch {
	case days > 0:
		return plural(days, "day") + " ago"
	case hours > 0:
		return plural(hours, "hour") + " ago"
	default:
		return "Just now"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
