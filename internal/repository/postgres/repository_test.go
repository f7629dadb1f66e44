package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-service/internal/config"
	"notes-service/internal/model"
	"notes-service/internal/repository"
)

// setupPool подключается к тестовой базе из NOTES_TEST_DATABASE_URL.
// Без переменной окружения интеграционные тесты пропускаются
func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("NOTES_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("NOTES_TEST_DATABASE_URL is not set")
	}

	_, err := MigrateUp(dsn)
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := NewPool(ctx, &config.ConfigDatabase{DSN: dsn, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE note_tags, note, tag RESTART IDENTITY`)
	require.NoError(t, err)

	return pool
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/notes", migrateURL("postgres://u:p@localhost:5432/notes"))
	assert.Equal(t, "pgx5://localhost/notes", migrateURL("postgresql://localhost/notes"))
	assert.Equal(t, "pgx5://localhost/notes", migrateURL("pgx5://localhost/notes"))
}

func TestLikeEscaper(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, likeEscaper.Replace(`50% off_now \o/`))
}

func TestPostgres_NoteLifecycle(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	notes, tags := NewNoteRepository(pool), NewTagRepository(pool)

	resolved, err := tags.GetPersistedTagsFromList(ctx, []model.Tag{{Name: "work"}, {Name: "home"}, {Name: "work"}})
	require.NoError(t, err)
	require.Len(t, resolved, 3)
	assert.Equal(t, resolved[0], resolved[2])

	created := time.Date(2024, 2, 3, 4, 5, 6, 789000, time.UTC)
	note, err := notes.Save(ctx, model.Note{Name: "n", Content: "50% done", CreatedAt: created, Tags: resolved[:2]})
	require.NoError(t, err)
	require.NotZero(t, note.ID)
	assert.Equal(t, created, note.CreatedAt)
	assert.Equal(t, resolved[:2], note.Tags)

	byTag, err := notes.GetByTag(ctx, resolved[1])
	require.NoError(t, err)
	assert.Equal(t, []model.Note{note}, byTag)

	since, err := notes.GetSinceDateTime(ctx, created)
	require.NoError(t, err)
	assert.Len(t, since, 1)

	since, err = notes.GetSinceDateTime(ctx, created.Add(time.Microsecond))
	require.NoError(t, err)
	assert.Empty(t, since)

	found, err := notes.GetBySearch(ctx, "0% d")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = notes.GetBySearch(ctx, "5_%")
	require.NoError(t, err)
	assert.Empty(t, found)

	note.Content = "updated"
	note.Tags = nil
	updated, err := notes.Save(ctx, note)
	require.NoError(t, err)
	assert.Equal(t, note.ID, updated.ID)
	assert.Empty(t, updated.Tags)

	require.NoError(t, notes.Remove(ctx, updated))
	_, ok, err := notes.GetByID(ctx, note.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostgres_SaveConstraintViolation(t *testing.T) {
	pool := setupPool(t)
	notes := NewNoteRepository(pool)

	_, err := notes.Save(context.Background(), model.Note{CreatedAt: time.Now()})

	var txErr *repository.TxError
	require.ErrorAs(t, err, &txErr)
	var cErr *model.ConstraintError
	require.True(t, errors.As(err, &cErr))
}

func TestPostgres_ConcurrentGetOrCreate(t *testing.T) {
	pool := setupPool(t)
	tags := NewTagRepository(pool)

	const workers = 8
	results := make([]model.Tag, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = tags.GetOrCreate(context.Background(), model.Tag{Name: "race"})
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
}
