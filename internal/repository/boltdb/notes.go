package boltdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

var _ repository.NoteRepository = (*noteRepo)(nil)

type noteRepo struct {
	store *Store
}

// NewNoteRepository создает репозиторий заметок поверх BoltDB
func NewNoteRepository(store *Store) repository.NoteRepository {
	return &noteRepo{store: store}
}

// GetByID возвращает заметку по id
func (r *noteRepo) GetByID(ctx context.Context, id int64) (model.Note, bool, error) {
	var (
		note  model.Note
		found bool
	)
	err := r.store.DB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(notesBucket).Get(idToKey(id))
		if data == nil {
			return nil
		}
		var rec noteRecord
		if err := decode(data, &rec); err != nil {
			return err
		}
		var err error
		note, err = toModel(tx, rec)
		found = err == nil
		return err
	})
	return note, found, err
}

// GetAll возвращает все заметки
func (r *noteRepo) GetAll(ctx context.Context) ([]model.Note, error) {
	return r.store.filterNotes(func(noteRecord) bool { return true })
}

// Save создает заметку без id или обновляет существующую
func (r *noteRepo) Save(ctx context.Context, note model.Note) (model.Note, error) {
	if err := model.CheckPersisted(note.Tags); err != nil {
		return model.Note{}, err
	}

	var saved model.Note
	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		if err := note.Validate(); err != nil {
			return err
		}

		rec := noteRecord{
			ID:        note.ID,
			Name:      note.Name,
			Content:   note.Content,
			CreatedAt: note.CreatedAt,
			TagIDs:    make([]int64, 0, len(note.Tags)),
		}
		for _, tag := range note.Tags {
			if tx.Bucket(tagsBucket).Get(idToKey(tag.ID)) == nil {
				return fmt.Errorf("tag %d does not exist", tag.ID)
			}
			rec.TagIDs = append(rec.TagIDs, tag.ID)
		}

		notes := tx.Bucket(notesBucket)
		// merge несуществующего id создает новую запись с новым id
		if rec.ID == 0 || notes.Get(idToKey(rec.ID)) == nil {
			seq, err := notes.NextSequence()
			if err != nil {
				return err
			}
			rec.ID = int64(seq)
		}

		data, err := encode(rec)
		if err != nil {
			return err
		}
		if err := notes.Put(idToKey(rec.ID), data); err != nil {
			return err
		}

		saved, err = toModel(tx, rec)
		return err
	})
	if err != nil {
		return model.Note{}, repository.WrapTx("save note", err)
	}
	return saved, nil
}

// Remove удаляет сохраненную заметку, теги остаются
func (r *noteRepo) Remove(ctx context.Context, note model.Note) error {
	if !note.IsPersisted() {
		return nil
	}

	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(notesBucket).Delete(idToKey(note.ID))
	})
	return repository.WrapTx("remove note", err)
}

// GetByTag возвращает заметки с указанным тегом
func (r *noteRepo) GetByTag(ctx context.Context, tag model.Tag) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		for _, id := range rec.TagIDs {
			if id == tag.ID {
				return true
			}
		}
		return false
	})
}

// GetSinceDateTime возвращает заметки, созданные не раньше since
func (r *noteRepo) GetSinceDateTime(ctx context.Context, since time.Time) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		return !rec.CreatedAt.Before(since)
	})
}

// GetBySearch возвращает заметки, у которых name или content содержит query (с учетом регистра)
func (r *noteRepo) GetBySearch(ctx context.Context, query string) ([]model.Note, error) {
	return r.store.filterNotes(func(rec noteRecord) bool {
		return strings.Contains(rec.Name, query) || strings.Contains(rec.Content, query)
	})
}
