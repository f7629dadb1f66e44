package notes

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"notes-service/internal/model"
	"notes-service/internal/repository"
	svc "notes-service/internal/service"
)

var _ svc.NoteService = (*service)(nil)

type service struct {
	noteRepository repository.NoteRepository
	tagRepository  repository.TagRepository
	log            zerolog.Logger
	now            func() time.Time
}

// NewNoteService создает новый экземпляр сервиса для работы с заметками
func NewNoteService(noteRepository repository.NoteRepository, tagRepository repository.TagRepository, log zerolog.Logger) svc.NoteService {
	return &service{
		noteRepository: noteRepository,
		tagRepository:  tagRepository,
		log:            log.With().Str("component", "note_service").Logger(),
		now:            time.Now,
	}
}

// List возвращает список всех заметок
func (s *service) List(ctx context.Context) ([]model.Note, error) {
	s.log.Debug().Msg("sending all notes")
	return s.noteRepository.GetAll(ctx)
}

// ListByTag возвращает заметки с указанным тегом
func (s *service) ListByTag(ctx context.Context, tagID int64) ([]model.Note, error) {
	tag, found, err := s.tagRepository.GetByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, model.NewNotFoundError("No tag with this id")
	}

	s.log.Debug().Int64("tag_id", tagID).Msg("sending notes filtered by tag")
	return s.noteRepository.GetByTag(ctx, tag)
}

// ListSince возвращает заметки, созданные не раньше since
func (s *service) ListSince(ctx context.Context, since time.Time) ([]model.Note, error) {
	s.log.Debug().Time("since", since).Msg("sending notes filtered by date")
	return s.noteRepository.GetSinceDateTime(ctx, since)
}

// Search возвращает заметки, содержащие подстроку query
func (s *service) Search(ctx context.Context, query string) ([]model.Note, error) {
	s.log.Debug().Str("query", query).Msg("sending notes filtered by search query")
	return s.noteRepository.GetBySearch(ctx, query)
}

// Create создает новую заметку. Время создания всегда серверное, переданный id игнорируется
func (s *service) Create(ctx context.Context, note model.Note) (model.Note, error) {
	tags, err := s.tagRepository.GetPersistedTagsFromList(ctx, note.Tags)
	if err != nil {
		return model.Note{}, err
	}

	// PostgreSQL хранит время с точностью до микросекунд
	createdAt := s.now().UTC().Truncate(time.Microsecond)

	newNote, err := model.NewNote(note.Name, note.Content, createdAt, tags)
	if err != nil {
		return model.Note{}, err
	}

	saved, err := s.noteRepository.Save(ctx, newNote)
	if err != nil {
		return model.Note{}, err
	}

	s.log.Info().Int64("note_id", saved.ID).Msg("added note")
	return saved, nil
}

// Update обновляет заметку с указанным id, сохраняя исходное время создания
func (s *service) Update(ctx context.Context, note model.Note) (model.Note, error) {
	original, err := s.getExisting(ctx, note.ID)
	if err != nil {
		return model.Note{}, err
	}

	s.log.Debug().Int64("note_id", note.ID).Msg("updating note")

	tags, err := s.tagRepository.GetPersistedTagsFromList(ctx, note.Tags)
	if err != nil {
		return model.Note{}, err
	}

	return s.noteRepository.Save(ctx, model.ReplaceNote(original, note, tags))
}

// Delete удаляет заметку по id
func (s *service) Delete(ctx context.Context, id int64) error {
	existing, err := s.getExisting(ctx, id)
	if err != nil {
		return err
	}

	s.log.Debug().Int64("note_id", id).Msg("removing note")
	return s.noteRepository.Remove(ctx, existing)
}

// getExisting проверяет, что id задан и заметка с ним существует
func (s *service) getExisting(ctx context.Context, id int64) (model.Note, error) {
	if id == 0 {
		return model.Note{}, model.NewAttributeError("Id not set. Cannot find needed note")
	}

	note, found, err := s.noteRepository.GetByID(ctx, id)
	if err != nil {
		return model.Note{}, err
	}
	if !found {
		return model.Note{}, model.NewNotFoundError("No note with this id")
	}
	return note, nil
}
