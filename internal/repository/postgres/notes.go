package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

const selectNotes = `SELECT id, name, content, created_at FROM note`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

var _ repository.NoteRepository = (*noteRepo)(nil)

type noteRepo struct {
	pool *pgxpool.Pool
}

// noteRow строка таблицы note
type noteRow struct {
	ID        int64
	Name      *string
	Content   string
	CreatedAt time.Time
}

// NewNoteRepository создает репозиторий заметок на PostgreSQL
func NewNoteRepository(pool *pgxpool.Pool) repository.NoteRepository {
	return &noteRepo{pool: pool}
}

// GetByID возвращает заметку по id вместе с тегами
func (r *noteRepo) GetByID(ctx context.Context, id int64) (model.Note, bool, error) {
	return getNoteByID(ctx, r.pool, id)
}

// GetAll возвращает все заметки
func (r *noteRepo) GetAll(ctx context.Context) ([]model.Note, error) {
	return queryNotes(ctx, r.pool, selectNotes+` ORDER BY id`)
}

// Save создает или обновляет заметку вместе со списком тегов в одной транзакции
func (r *noteRepo) Save(ctx context.Context, note model.Note) (model.Note, error) {
	if err := model.CheckPersisted(note.Tags); err != nil {
		return model.Note{}, err
	}
	if err := note.Validate(); err != nil {
		return model.Note{}, repository.WrapTx("save note", err)
	}

	var saved model.Note
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		id, err := upsertNote(ctx, tx, note)
		if err != nil {
			return err
		}
		if err := replaceNoteTags(ctx, tx, id, note.Tags); err != nil {
			return err
		}

		var found bool
		saved, found, err = getNoteByID(ctx, tx, id)
		if err == nil && !found {
			err = fmt.Errorf("note %d vanished after save", id)
		}
		return err
	})
	if err != nil {
		return model.Note{}, repository.WrapTx("save note", err)
	}
	return saved, nil
}

// Remove удаляет сохраненную заметку. Связи с тегами удаляются каскадно, теги остаются
func (r *noteRepo) Remove(ctx context.Context, note model.Note) error {
	if !note.IsPersisted() {
		return nil
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM note WHERE id = $1`, note.ID)
		return err
	})
	return repository.WrapTx("remove note", err)
}

// GetByTag возвращает заметки, содержащие указанный тег
func (r *noteRepo) GetByTag(ctx context.Context, tag model.Tag) ([]model.Note, error) {
	return queryNotes(ctx, r.pool, selectNotes+`
		WHERE EXISTS (SELECT 1 FROM note_tags nt WHERE nt.note_id = note.id AND nt.tags_id = $1)
		ORDER BY id`, tag.ID)
}

// GetSinceDateTime возвращает заметки с created_at >= since
func (r *noteRepo) GetSinceDateTime(ctx context.Context, since time.Time) ([]model.Note, error) {
	return queryNotes(ctx, r.pool, selectNotes+` WHERE created_at >= $1 ORDER BY id`, since)
}

// GetBySearch ищет подстроку в name или content с учетом регистра
func (r *noteRepo) GetBySearch(ctx context.Context, query string) ([]model.Note, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"
	return queryNotes(ctx, r.pool, selectNotes+`
		WHERE name LIKE $1 ESCAPE '\' OR content LIKE $1 ESCAPE '\'
		ORDER BY id`, pattern)
}

func getNoteByID(ctx context.Context, q querier, id int64) (model.Note, bool, error) {
	notes, err := queryNotes(ctx, q, selectNotes+` WHERE id = $1`, id)
	if err != nil || len(notes) == 0 {
		return model.Note{}, false, err
	}
	return notes[0], true, nil
}

// queryNotes выполняет выборку заметок и догружает их теги одним запросом
func queryNotes(ctx context.Context, q querier, sql string, args ...any) ([]model.Note, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	noteRows, err := pgx.CollectRows(rows, pgx.RowToStructByPos[noteRow])
	if err != nil {
		return nil, fmt.Errorf("collect notes: %w", err)
	}

	notes := make([]model.Note, len(noteRows))
	ids := make([]int64, len(noteRows))
	index := make(map[int64]int, len(noteRows))
	for i, row := range noteRows {
		notes[i] = model.Note{
			ID:        row.ID,
			Content:   row.Content,
			CreatedAt: row.CreatedAt.UTC(),
			Tags:      []model.Tag{},
		}
		if row.Name != nil {
			notes[i].Name = *row.Name
		}
		ids[i] = row.ID
		index[row.ID] = i
	}
	if len(notes) == 0 {
		return notes, nil
	}

	tagRows, err := q.Query(ctx, `
		SELECT nt.note_id, t.id, t.name
		FROM note_tags nt JOIN tag t ON t.id = nt.tags_id
		WHERE nt.note_id = ANY($1)
		ORDER BY nt.note_id, nt.position`, ids)
	if err != nil {
		return nil, fmt.Errorf("query note tags: %w", err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var noteID int64
		var tag model.Tag
		if err := tagRows.Scan(&noteID, &tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("scan note tag: %w", err)
		}
		i := index[noteID]
		notes[i].Tags = append(notes[i].Tags, tag)
	}
	if err := tagRows.Err(); err != nil {
		return nil, fmt.Errorf("read note tags: %w", err)
	}

	return notes, nil
}

func upsertNote(ctx context.Context, tx pgx.Tx, note model.Note) (int64, error) {
	if note.IsPersisted() {
		cmd, err := tx.Exec(ctx, `UPDATE note SET name = $2, content = $3, created_at = $4 WHERE id = $1`,
			note.ID, nullable(note.Name), note.Content, note.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("update note %d: %w", note.ID, err)
		}
		if cmd.RowsAffected() > 0 {
			return note.ID, nil
		}
		// merge несуществующего id создает новую строку с новым id
	}

	var id int64
	err := tx.QueryRow(ctx, `INSERT INTO note (name, content, created_at) VALUES ($1, $2, $3) RETURNING id`,
		nullable(note.Name), note.Content, note.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}
	return id, nil
}

func replaceNoteTags(ctx context.Context, tx pgx.Tx, noteID int64, tags []model.Tag) error {
	if _, err := tx.Exec(ctx, `DELETE FROM note_tags WHERE note_id = $1`, noteID); err != nil {
		return fmt.Errorf("clear note tags: %w", err)
	}
	if len(tags) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"note_tags"},
		[]string{"note_id", "tags_id", "position"},
		pgx.CopyFromSlice(len(tags), func(i int) ([]any, error) {
			return []any{noteID, tags[i].ID, int32(i)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy note tags: %w", err)
	}
	return nil
}
