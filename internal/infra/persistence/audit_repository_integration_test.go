//go:build integration

package persistence_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"github.com/spounge-ai/postgresql-connector/internal/infra/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dbpool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=user",
			"POSTGRES_DB=connector",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	databaseURL := fmt.Sprintf("postgres://user:secret@%s/connector?sslmode=disable", resource.GetHostPort("5432/tcp"))

	if err := resource.Expire(120); err != nil {
		log.Fatalf("Could not set resource expiration: %s", err)
	}

	if err := pool.Retry(func() error {
		var err error
		dbpool, err = persistence.NewPool(context.Background(), databaseURL, config.DBConnectionConfig{MaxConns: 2})
		return err
	}); err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	if err := persistence.Migrate(databaseURL); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}
	// second run is a no-op
	if err := persistence.Migrate(databaseURL); err != nil {
		log.Fatalf("Could not rerun migrations: %s", err)
	}

	code := m.Run()

	dbpool.Close()
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}

func truncate(t *testing.T) {
	t.Helper()
	_, err := dbpool.Exec(context.Background(), "TRUNCATE sync_invocations")
	require.NoError(t, err)
}

func TestAuditRepositoryRoundTrip(t *testing.T) {
	truncate(t)
	repo := persistence.NewSyncAuditRepository(dbpool)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Millisecond)

	require.NoError(t, repo.CreateSyncRecord(ctx, &domain.SyncRecord{
		ID: "older", Subject: "scheduler", Outcome: domain.SyncSucceeded,
		StartedAt: base.Add(-time.Minute), Duration: 1500 * time.Millisecond,
	}))
	require.NoError(t, repo.CreateSyncRecord(ctx, &domain.SyncRecord{
		ID: "newer", RequestID: "req-2", Outcome: domain.SyncWarning, Detail: "bad host",
		StartedAt: base, Duration: 20 * time.Millisecond,
	}))

	rows, err := dbpool.Query(ctx, `SELECT id, request_id, outcome, detail, started_at, duration_ms FROM sync_invocations ORDER BY started_at DESC`)
	require.NoError(t, err)
	type row struct {
		ID, RequestID, Outcome, Detail string
		StartedAt                      time.Time
		DurationMS                     int64
	}
	var stored []row
	for rows.Next() {
		var r row
		require.NoError(t, rows.Scan(&r.ID, &r.RequestID, &r.Outcome, &r.Detail, &r.StartedAt, &r.DurationMS))
		stored = append(stored, r)
	}
	require.NoError(t, rows.Err())
	require.Len(t, stored, 2)

	assert.Equal(t, "newer", stored[0].ID)
	assert.Equal(t, "warning", stored[0].Outcome)
	assert.Equal(t, "bad host", stored[0].Detail)
	assert.Equal(t, "req-2", stored[0].RequestID)
	assert.True(t, base.Equal(stored[0].StartedAt))
	assert.Equal(t, "older", stored[1].ID)
	assert.Equal(t, "success", stored[1].Outcome)
	assert.Equal(t, int64(1500), stored[1].DurationMS)
}

func TestAuditRepositoryRejectsDuplicateID(t *testing.T) {
	truncate(t)
	repo := persistence.NewSyncAuditRepository(dbpool)
	record := &domain.SyncRecord{ID: "dup", Outcome: domain.SyncFailed, StartedAt: time.Now()}

	require.NoError(t, repo.CreateSyncRecord(context.Background(), record))
	assert.Error(t, repo.CreateSyncRecord(context.Background(), record))
}
