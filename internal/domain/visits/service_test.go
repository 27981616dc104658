package visits

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/avallejos/visitauth/pkg/errors"
)

type memVisits struct {
	records []Visit
	failErr error
	seq     int64
}

func (m *memVisits) AddVisit(_ context.Context, userID int64, dateTime string) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.seq++
	m.records = append(m.records, Visit{ID: m.seq, UserID: userID, DateTime: dateTime})
	return nil
}

func (m *memVisits) VisitsByUser(_ context.Context, userID int64) ([]Visit, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	var out []Visit
	for _, v := range m.records {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func newTestService(store Store) Service {
	return NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestService_AddRecordsTimestamp(t *testing.T) {
	store := &memVisits{}
	svc := newTestService(store)

	before := time.Now().UnixMilli()
	require.NoError(t, svc.Add(context.Background(), 7))
	after := time.Now().UnixMilli()

	require.Len(t, store.records, 1)
	require.Equal(t, int64(7), store.records[0].UserID)

	stamp, err := strconv.ParseInt(store.records[0].DateTime, 10, 64)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stamp, before)
	require.LessOrEqual(t, stamp, after)
}

func TestService_AddRejectsInvalidUser(t *testing.T) {
	svc := newTestService(&memVisits{})

	err := svc.Add(context.Background(), 0)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_HistoryScopedToUser(t *testing.T) {
	store := &memVisits{}
	svc := newTestService(store)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, 1))
	require.NoError(t, svc.Add(ctx, 2))
	require.NoError(t, svc.Add(ctx, 1))

	visits, err := svc.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	for _, v := range visits {
		require.Equal(t, int64(1), v.UserID)
	}
}

func TestService_HistoryEmptyIsNotNil(t *testing.T) {
	svc := newTestService(&memVisits{})

	visits, err := svc.History(context.Background(), 99)
	require.NoError(t, err)
	require.NotNil(t, visits)
	require.Empty(t, visits)
}

func TestService_StoreFailures(t *testing.T) {
	store := &memVisits{failErr: errors.New("disk full")}
	svc := newTestService(store)
	ctx := context.Background()

	err := svc.Add(ctx, 1)
	require.True(t, apperrors.IsCode(err, "store_error"))

	_, err = svc.History(ctx, 1)
	require.True(t, apperrors.IsCode(err, "store_error"))
}
