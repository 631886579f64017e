package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/repo"
)

// StatusService looks up a team's default experiment status, caching hits.
type StatusService struct {
	statuses *repo.StatusRepo
	cache    *expirable.LRU[string, model.Status]
}

func NewStatusService(statuses *repo.StatusRepo, size int, ttl time.Duration) *StatusService {
	if size <= 0 {
		size = 128
	}
	return &StatusService{
		statuses: statuses,
		cache:    expirable.NewLRU[string, model.Status](size, nil, ttl),
	}
}

func (s *StatusService) DefaultStatus(ctx context.Context, teamID string) (*model.Status, error) {
	if status, ok := s.cache.Get(teamID); ok {
		return &status, nil
	}
	status, err := s.statuses.GetDefault(ctx, teamID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(teamID, *status)
	return status, nil
}
