package visits

import "context"

// Store abstracts visit-history persistence.
type Store interface {
	AddVisit(ctx context.Context, userID int64, dateTime string) error
	VisitsByUser(ctx context.Context, userID int64) ([]Visit, error)
}
