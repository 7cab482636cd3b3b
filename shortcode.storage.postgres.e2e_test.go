//go:build integration

package shortcode

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgresContainer starts an ephemeral PostgreSQL container and returns
// its connection string.
func setupPostgresContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15",
		postgres.WithDatabase("shortcode_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")
	return connStr
}

// openPostgresStorage opens a storage with its own table prefix so tests
// sharing a container do not see each other's templates.
func openPostgresStorage(t *testing.T, connStr string, prefix string) *PostgresStorage {
	t.Helper()
	storage, err := NewPostgresStorage(PostgresConfig{
		ConnectionString: connStr,
		TablePrefix:      prefix,
		AutoMigrate:      true,
		QueryTimeout:     30 * time.Second,
	})
	require.NoError(t, err, "failed to create postgres storage")
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestPostgres_E2E(t *testing.T) {
	connStr := setupPostgresContainer(t)
	var seq atomic.Int64

	t.Run("TemplateStorage", func(t *testing.T) {
		testTemplateStorage(t, func(t *testing.T) TemplateStorage {
			return openPostgresStorage(t, connStr, fmt.Sprintf("t%d_", seq.Add(1)))
		})
	})

	t.Run("Migrations", func(t *testing.T) {
		ctx := context.Background()
		storage := openPostgresStorage(t, connStr, "mig_")

		version, err := storage.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, version)

		require.NoError(t, storage.RunMigrations(ctx), "migrations are idempotent")
		version, err = storage.CurrentSchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, version)
	})

	t.Run("LikeWildcardsAreLiteral", func(t *testing.T) {
		ctx := context.Background()
		storage := openPostgresStorage(t, connStr, "like_")
		for _, name := range []string{"note_a", "notexa", "100%"} {
			require.NoError(t, storage.Save(ctx, &StoredTemplate{Name: name, Source: name}))
		}

		results, err := storage.List(ctx, &TemplateQuery{NamePrefix: "note_"})
		require.NoError(t, err)
		assert.Equal(t, []string{"note_a"}, templateNames(results))

		results, err = storage.List(ctx, &TemplateQuery{NameContains: "%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"100%"}, templateNames(results))
	})

	t.Run("DoubleClose", func(t *testing.T) {
		storage, err := NewPostgresStorage(PostgresConfig{ConnectionString: connStr, TablePrefix: "close_"})
		require.NoError(t, err)
		require.NoError(t, storage.Close())
		assert.Error(t, storage.Close())
	})

	t.Run("DriverAndSettings", func(t *testing.T) {
		ctx := context.Background()
		settings, err := ParseSettings([]byte(fmt.Sprintf(`
storage:
  driver: postgres
  connection: %q
cache:
  ttl: 1m
shortcodes:
  youtube: video
templates:
  video: '<iframe src="https://www.youtube.com/embed/{{.id}}"></iframe>'
`, connStr)), SettingsFormatYAML, "e2e.yaml")
		require.NoError(t, err)

		engine, storage, err := settings.NewEngine(ctx)
		require.NoError(t, err)
		defer storage.Close()

		out, err := engine.Compile(ctx, `[youtube id="abc" /]`)
		require.NoError(t, err)
		assert.Equal(t, `<iframe src="https://www.youtube.com/embed/abc"></iframe>`, out)

		// A second open finds the template unchanged and saves nothing.
		again, err := settings.OpenStorage(ctx)
		require.NoError(t, err)
		defer again.Close()
		versions, err := again.ListVersions(ctx, "video")
		require.NoError(t, err)
		assert.Equal(t, []int{1}, versions)
	})
}

func TestNewPostgresStorage_EmptyConnectionString(t *testing.T) {
	_, err := NewPostgresStorage(PostgresConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrMsgPostgresEmptyConnString)
}
