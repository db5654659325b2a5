package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/serroba/linkboard/internal/analytics"
	"github.com/serroba/linkboard/internal/analytics/store"
	"github.com/stretchr/testify/require"
)

func TestPostgresSaveEvents(t *testing.T) {
	newMock := func(t *testing.T) (pgxmock.PgxPoolIface, *store.Postgres) {
		t.Helper()

		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		t.Cleanup(mock.Close)

		return mock, store.NewPostgres(mock)
	}

	at := time.Unix(1700000000, 0).UTC()

	t.Run("persists created events", func(t *testing.T) {
		mock, eventStore := newMock(t)

		mock.ExpectExec("INSERT INTO link_events").
			WithArgs(pgxmock.AnyArg(), "created", "abc123", at, "203.0.113.7", "TestAgent/1.0", "").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := eventStore.SaveLinkCreated(context.Background(), &analytics.LinkCreatedEvent{
			Code:      "abc123",
			CreatedAt: at,
			ClientIP:  "203.0.113.7",
			UserAgent: "TestAgent/1.0",
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("persists visited events with the referrer", func(t *testing.T) {
		mock, eventStore := newMock(t)

		mock.ExpectExec("INSERT INTO link_events").
			WithArgs(pgxmock.AnyArg(), "visited", "abc123", at, "203.0.113.7", "TestAgent/1.0", "https://referrer.example.com").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := eventStore.SaveLinkVisited(context.Background(), &analytics.LinkVisitedEvent{
			Code:      "abc123",
			VisitedAt: at,
			ClientIP:  "203.0.113.7",
			UserAgent: "TestAgent/1.0",
			Referrer:  "https://referrer.example.com",
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
