package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"reservio/internal/lock"
	"reservio/internal/models"
	"reservio/internal/store/sqlite"
)

type fixture struct {
	db      *sqlite.DB
	locks   *lock.MemoryCoordinator
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	locks := lock.NewMemoryCoordinator()
	logger := zerolog.New(io.Discard)

	var seq atomic.Int64
	nextID := func() string {
		return fmt.Sprintf("id-%d", seq.Add(1))
	}

	svc := New(db, db, locks, &logger, WithIDGenerator(nextID), WithJournal(db))
	return &fixture{db: db, locks: locks, service: svc}
}

func (f *fixture) seedResource(t *testing.T, id, projectID string, capacity int, cfg *models.BookingConfig) {
	t.Helper()
	require.NoError(t, f.db.CreateResource(context.Background(), &models.Resource{
		ID:              id,
		ProjectID:       projectID,
		Name:            "Resource " + id,
		DefaultCapacity: capacity,
		BookingConfig:   cfg,
	}))
}

func dayUTC(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hourRange(day time.Time, fromHour, toHour int) (time.Time, time.Time) {
	return day.Add(time.Duration(fromHour) * time.Hour), day.Add(time.Duration(toHour) * time.Hour)
}
