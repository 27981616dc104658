package visits

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

// Service records and lists visits for authenticated users.
type Service interface {
	Add(ctx context.Context, userID int64) error
	History(ctx context.Context, userID int64) ([]Visit, error)
}

type service struct {
	store  Store
	logger *slog.Logger
}

// NewService constructs a Service instance.
func NewService(store Store, logger *slog.Logger) Service {
	return &service{store: store, logger: logger.With("component", "visits.service")}
}

func (s *service) Add(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return apperrors.Wrap("invalid_input", "user id is required", nil)
	}
	stamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := s.store.AddVisit(ctx, userID, stamp); err != nil {
		return apperrors.Wrap("store_error", "failed to add visit", err)
	}
	return nil
}

func (s *service) History(ctx context.Context, userID int64) ([]Visit, error) {
	records, err := s.store.VisitsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to list visits", err)
	}
	if records == nil {
		records = []Visit{}
	}
	return records, nil
}
