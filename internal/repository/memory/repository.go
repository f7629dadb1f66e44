package memory

import (
	"sort"
	"sync"
	"time"

	"notes-service/internal/model"
)

// noteRecord хранит заметку со ссылками на теги по id, как строка join-таблицы
type noteRecord struct {
	id        int64
	name      string
	content   string
	createdAt time.Time
	tagIDs    []int64
}

// Store общее in-memory хранилище заметок и тегов.
// Репозитории заметок и тегов работают с одним Store, чтобы теги разделялись между заметками
type Store struct {
	mu      sync.RWMutex
	notes   map[int64]noteRecord
	tags    map[int64]model.Tag
	noteSeq int64
	tagSeq  int64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		notes: make(map[int64]noteRecord),
		tags:  make(map[int64]model.Tag),
	}
}

// toModel собирает заметку вместе с актуальными тегами. Вызывать под блокировкой
func (s *Store) toModel(rec noteRecord) model.Note {
	note := model.Note{
		ID:        rec.id,
		Name:      rec.name,
		Content:   rec.content,
		CreatedAt: rec.createdAt,
		Tags:      make([]model.Tag, 0, len(rec.tagIDs)),
	}
	for _, id := range rec.tagIDs {
		if tag, ok := s.tags[id]; ok {
			note.Tags = append(note.Tags, tag)
		}
	}
	return note
}

// filterNotes возвращает заметки, подходящие под условие, упорядоченные по id
func (s *Store) filterNotes(match func(noteRecord) bool) []model.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := make([]model.Note, 0, len(s.notes))
	for _, rec := range s.notes {
		if match(rec) {
			notes = append(notes, s.toModel(rec))
		}
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].ID < notes[j].ID })

	return notes
}
