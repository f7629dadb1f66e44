package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	"notes-service/internal/repository/memory"
)

var fixedNow = time.Date(2024, 6, 1, 10, 30, 0, 123456789, time.UTC)

// failingTagRepository - tag репозиторий, который всегда возвращает ошибку при разрешении тегов
type failingTagRepository struct {
	repository.TagRepository
	err error
}

func (f *failingTagRepository) GetPersistedTagsFromList(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	return nil, f.err
}

func newTestService() (*service, repository.NoteRepository, repository.TagRepository) {
	store := memory.NewStore()
	noteRepo := memory.NewNoteRepository(store)
	tagRepo := memory.NewTagRepository(store)

	s := NewNoteService(noteRepo, tagRepo, zerolog.Nop()).(*service)
	s.now = func() time.Time { return fixedNow }

	return s, noteRepo, tagRepo
}

func TestNoteService_Create_Success(t *testing.T) {
	ctx := context.Background()
	s, _, tagRepo := newTestService()

	submittedAt := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	note, err := s.Create(ctx, model.Note{
		ID:        100,
		Name:      "Test Note",
		Content:   "hello",
		CreatedAt: submittedAt,
		Tags:      []model.Tag{{Name: "work"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if note.ID == 0 || note.ID == 100 {
		t.Errorf("Expected server generated id, got %d", note.ID)
	}

	wantCreatedAt := fixedNow.Truncate(time.Microsecond)
	if !note.CreatedAt.Equal(wantCreatedAt) {
		t.Errorf("Expected createdAt %v, got %v", wantCreatedAt, note.CreatedAt)
	}

	if len(note.Tags) != 1 || note.Tags[0].ID == 0 || note.Tags[0].Name != "work" {
		t.Fatalf("Expected one persisted tag 'work', got %+v", note.Tags)
	}

	tag, found, err := tagRepo.GetByName(ctx, "work")
	if err != nil || !found {
		t.Fatalf("Expected tag 'work' to be created, found=%v err=%v", found, err)
	}
	if tag.ID != note.Tags[0].ID {
		t.Errorf("Expected note tag id %d, got %d", tag.ID, note.Tags[0].ID)
	}
}

func TestNoteService_Create_ReusesTagByName(t *testing.T) {
	ctx := context.Background()
	s, _, tagRepo := newTestService()

	first, err := s.Create(ctx, model.Note{Content: "a", Tags: []model.Tag{{Name: "shared"}}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	second, err := s.Create(ctx, model.Note{Content: "b", Tags: []model.Tag{{Name: "shared"}}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if first.Tags[0].ID != second.Tags[0].ID {
		t.Errorf("Expected the same tag for identical names, got %d and %d", first.Tags[0].ID, second.Tags[0].ID)
	}

	all, _ := tagRepo.GetAll(ctx)
	if len(all) != 1 {
		t.Errorf("Expected exactly one tag row, got %d", len(all))
	}
}

func TestNoteService_Create_MissingContent(t *testing.T) {
	s, noteRepo, _ := newTestService()

	_, err := s.Create(context.Background(), model.Note{Name: "no content"})

	var cErr *model.ConstraintError
	if !errors.As(err, &cErr) {
		t.Fatalf("Expected constraint error, got: %v", err)
	}
	var txErr *repository.TxError
	if !errors.As(err, &txErr) {
		t.Errorf("Expected constraint error to be wrapped in TxError, got: %T", err)
	}

	all, _ := noteRepo.GetAll(context.Background())
	if len(all) != 0 {
		t.Errorf("Expected nothing saved, got %d notes", len(all))
	}
}

func TestNoteService_Create_TagResolutionError(t *testing.T) {
	store := memory.NewStore()
	wantErr := errors.New("boom")
	s := NewNoteService(memory.NewNoteRepository(store), &failingTagRepository{err: wantErr}, zerolog.Nop())

	_, err := s.Create(context.Background(), model.Note{Content: "c"})
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected %v, got: %v", wantErr, err)
	}
}

func TestNoteService_Update_PreservesIDAndCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	created, err := s.Create(ctx, model.Note{Content: "hello", Tags: []model.Tag{{Name: "work"}}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	s.now = func() time.Time { return fixedNow.Add(time.Hour) }

	updated, err := s.Update(ctx, model.Note{
		ID:        created.ID,
		Name:      "renamed",
		Content:   "hello2",
		CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if updated.ID != created.ID {
		t.Errorf("Expected id %d, got %d", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("Expected createdAt %v, got %v", created.CreatedAt, updated.CreatedAt)
	}
	if updated.Content != "hello2" || updated.Name != "renamed" {
		t.Errorf("Expected payload fields applied, got %+v", updated)
	}
	if len(updated.Tags) != 0 {
		t.Errorf("Expected tags replaced with empty list, got %+v", updated.Tags)
	}
}

func TestNoteService_Update_Errors(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	_, err := s.Update(ctx, model.Note{Content: "x"})
	if !errors.Is(err, model.ErrInvalidAttribute) || errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected invalid attribute error for missing id, got: %v", err)
	}
	if err != nil && err.Error() != "Id not set. Cannot find needed note" {
		t.Errorf("Unexpected message: %q", err.Error())
	}

	_, err = s.Update(ctx, model.Note{ID: 404, Content: "x"})
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected not found error, got: %v", err)
	}
}

func TestNoteService_Delete(t *testing.T) {
	ctx := context.Background()
	s, noteRepo, tagRepo := newTestService()

	created, err := s.Create(ctx, model.Note{Content: "c", Tags: []model.Tag{{Name: "keep"}}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := s.Delete(ctx, 0); !errors.Is(err, model.ErrInvalidAttribute) {
		t.Errorf("Expected invalid attribute for missing id, got: %v", err)
	}
	if err := s.Delete(ctx, created.ID+1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected not found for unknown id, got: %v", err)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, found, _ := noteRepo.GetByID(ctx, created.ID); found {
		t.Error("Expected note to be removed")
	}
	if _, found, _ := tagRepo.GetByName(ctx, "keep"); !found {
		t.Error("Expected tag to survive note removal")
	}
}

func TestNoteService_ListByTag(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	created, err := s.Create(ctx, model.Note{Content: "c", Tags: []model.Tag{{Name: "t"}}})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := s.Create(ctx, model.Note{Content: "other"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	notes, err := s.ListByTag(ctx, created.Tags[0].ID)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(notes) != 1 || notes[0].ID != created.ID {
		t.Errorf("Expected only note %d, got %+v", created.ID, notes)
	}

	_, err = s.ListByTag(ctx, 12345)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("Expected not found for unknown tag, got: %v", err)
	}
	if err != nil && err.Error() != "No tag with this id" {
		t.Errorf("Unexpected message: %q", err.Error())
	}
}

func TestNoteService_ListSinceAndSearch(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestService()

	first, _ := s.Create(ctx, model.Note{Name: "foo", Content: "x"})
	s.now = func() time.Time { return fixedNow.Add(time.Minute) }
	second, _ := s.Create(ctx, model.Note{Content: "has foo inside"})
	if _, err := s.Create(ctx, model.Note{Content: "Foo"}); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	since, err := s.ListSince(ctx, second.CreatedAt)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(since) != 2 {
		t.Errorf("Expected 2 notes at or after boundary, got %d", len(since))
	}

	found, err := s.Search(ctx, "foo")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(found) != 2 || found[0].ID != first.ID || found[1].ID != second.ID {
		t.Errorf("Expected notes %d and %d, got %+v", first.ID, second.ID, found)
	}

	all, err := s.List(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("Expected 3 notes, got %d (err %v)", len(all), err)
	}
}
