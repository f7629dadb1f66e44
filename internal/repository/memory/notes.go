package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

var _ repository.NoteRepository = (*noteRepo)(nil)

type noteRepo struct {
	store *Store
}

// NewNoteRepository создает in-memory репозиторий заметок поверх общего Store
func NewNoteRepository(store *Store) repository.NoteRepository {
	return &noteRepo{store: store}
}

// GetByID возвращает заметку по id
func (r *noteRepo) GetByID(ctx context.Context, id int64) (model.Note, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.notes[id]
	if !ok {
		return model.Note{}, false, nil
	}
	return r.store.toModel(rec), true, nil
}

// GetAll возвращает все заметки
func (r *noteRepo) GetAll(ctx context.Context) ([]model.Note, error) {
	return r.store.filterNotes(func(noteRecord) bool { return true }), nil
}

// Save создает заметку без id или обновляет существующую
func (r *noteRepo) Save(ctx context.Context, note model.Note) (model.Note, error) {
	if err := model.CheckPersisted(note.Tags); err != nil {
		return model.Note{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := note.Validate(); err != nil {
		return model.Note{}, repository.WrapTx("save note", err)
	}

	rec := noteRecord{
		id:        note.ID,
		name:      note.Name,
		content:   note.Content,
		createdAt: note.CreatedAt,
		tagIDs:    make([]int64, 0, len(note.Tags)),
	}
	for _, tag := range note.Tags {
		if _, ok := r.store.tags[tag.ID]; !ok {
			return model.Note{}, repository.WrapTx("save note", fmt.Errorf("tag %d does not exist", tag.ID))
		}
		rec.tagIDs = append(rec.tagIDs, tag.ID)
	}

	// merge несуществующего id создает новую строку с новым id
	if _, ok := r.store.notes[rec.id]; !ok {
		r.store.noteSeq++
		rec.id = r.store.noteSeq
	}
	r.store.notes[rec.id] = rec

	return r.store.toModel(rec), nil
}

// Remove удаляет сохраненную заметку, теги остаются
func (r *noteRepo) Remove(ctx context.Context, note model.Note) error {
	if !note.IsPersisted() {
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.notes, note.ID)
	return nil
}

// GetByTag возвращает заметки с указанным тегом
func (r *noteRepo) GetByTag(ctx context.Context, tag model.Tag) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		for _, id := range rec.tagIDs {
			if id == tag.ID {
				return true
			}
		}
		return false
	}), nil
}

// GetSinceDateTime возвращает заметки, созданные не раньше since
func (r *noteRepo) GetSinceDateTime(ctx context.Context, since time.Time) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		return !rec.createdAt.Before(since)
	}), nil
}

// GetBySearch возвращает заметки, у которых name или content содержит query (с учетом регистра)
func (r *noteRepo) GetBySearch(ctx context.Context, query string) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		return strings.Contains(rec.name, query) || strings.Contains(rec.content, query)
	}), nil
}
