package notifications

import (
	"context"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type ActivityService interface {
	ListActivity(ctx context.Context, login string, limit int) ([]ActivityRecord, error)
}

type activityService struct {
	repo Repository
}

func NewActivityService(repo Repository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) ListActivity(ctx context.Context, login string, limit int) ([]ActivityRecord, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	return s.repo.ListByLogin(ctx, login, limit)
}
