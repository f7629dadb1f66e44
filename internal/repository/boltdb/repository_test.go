package boltdb

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()

	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTagRepository_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	tags := NewTagRepository(openStore(t, filepath.Join(t.TempDir(), "notes.db")))

	work, err := tags.GetOrCreate(ctx, model.Tag{Name: "work"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), work.ID)

	got, err := tags.GetOrCreate(ctx, model.Tag{ID: work.ID, Name: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, work, got)

	got, err = tags.GetOrCreate(ctx, model.Tag{ID: 999, Name: "work"})
	require.NoError(t, err)
	assert.Equal(t, work, got)

	home, err := tags.GetOrCreate(ctx, model.Tag{ID: 999, Name: "home"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), home.ID)

	byName, found, err := tags.GetByName(ctx, "home")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, home, byName)

	_, err = tags.Save(ctx, model.Tag{Name: "work"})
	assert.ErrorIs(t, err, ErrDuplicateTagName)
}

func TestTagRepository_GetPersistedTagsFromList_RollsBack(t *testing.T) {
	ctx := context.Background()
	tags := NewTagRepository(openStore(t, filepath.Join(t.TempDir(), "notes.db")))

	_, err := tags.GetPersistedTagsFromList(ctx, []model.Tag{{Name: "fresh"}, {}})

	var cErr *model.ConstraintError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"name: name cannot be null"}, cErr.Messages())

	all, err := tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "tags created before the failure must be rolled back")
}

func TestNoteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.db")
	store := openStore(t, path)
	notes, tags := NewNoteRepository(store), NewTagRepository(store)

	resolved, err := tags.GetPersistedTagsFromList(ctx, []model.Tag{{Name: "b"}, {Name: "a"}})
	require.NoError(t, err)

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	note, err := model.NewNote("title", "some content", created, resolved)
	require.NoError(t, err)

	saved, err := notes.Save(ctx, note)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)
	assert.Equal(t, resolved, saved.Tags)

	byTag, err := notes.GetByTag(ctx, resolved[1])
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	found, err := notes.GetBySearch(ctx, "me con")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	since, err := notes.GetSinceDateTime(ctx, created.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Empty(t, since)

	// merge несуществующего id создает новую запись
	ghost := saved
	ghost.ID = 77
	merged, err := notes.Save(ctx, ghost)
	require.NoError(t, err)
	assert.Equal(t, int64(2), merged.ID)

	require.NoError(t, notes.Remove(ctx, merged))
	require.NoError(t, notes.Remove(ctx, model.Note{}))

	// Данные переживают переоткрытие файла
	require.NoError(t, store.Close())
	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := NewNoteRepository(reopened).GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "some content", got.Content)
	assert.True(t, created.Equal(got.CreatedAt))
	require.Len(t, got.Tags, 2)
	assert.Equal(t, "b", got.Tags[0].Name)

	all, err := NewNoteRepository(reopened).GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNoteRepository_Save_Constraints(t *testing.T) {
	ctx := context.Background()
	notes := NewNoteRepository(openStore(t, filepath.Join(t.TempDir(), "notes.db")))

	_, err := notes.Save(ctx, model.Note{Content: "x", CreatedAt: time.Now(), Tags: []model.Tag{{Name: "new"}}})
	assert.ErrorIs(t, err, model.ErrInvalidAttribute)

	_, err = notes.Save(ctx, model.Note{CreatedAt: time.Now()})
	var txErr *repository.TxError
	require.ErrorAs(t, err, &txErr)
	var cErr *model.ConstraintError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, []string{"content: Content cannot be null"}, cErr.Messages())

	_, err = notes.Save(ctx, model.Note{Content: "x", CreatedAt: time.Now(), Tags: []model.Tag{{ID: 5, Name: "ghost"}}})
	require.ErrorAs(t, err, &txErr)
}

func TestTagRepository_ConcurrentGetOrCreate(t *testing.T) {
	ctx := context.Background()
	tags := NewTagRepository(openStore(t, filepath.Join(t.TempDir(), "notes.db")))

	const workers = 16
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag, err := tags.GetOrCreate(ctx, model.Tag{Name: "shared"})
			ids[i], errs[i] = tag.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}

	all, err := tags.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRemove_WrapsErrors(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, filepath.Join(t.TempDir(), "notes.db"))
	notes, tags := NewNoteRepository(store), NewTagRepository(store)
	require.NoError(t, store.Close())

	var txErr *repository.TxError

	err := notes.Remove(ctx, model.Note{ID: 1})
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "remove note", txErr.Op)

	err = tags.Remove(ctx, model.Tag{ID: 1})
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, "remove tag", txErr.Op)
}
