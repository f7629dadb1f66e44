package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

var _ repository.TagRepository = (*tagRepo)(nil)

type tagRepo struct {
	pool *pgxpool.Pool
}

// NewTagRepository создает репозиторий тегов на PostgreSQL
func NewTagRepository(pool *pgxpool.Pool) repository.TagRepository {
	return &tagRepo{pool: pool}
}

// GetByID возвращает тег по id
func (r *tagRepo) GetByID(ctx context.Context, id int64) (model.Tag, bool, error) {
	return getTagByID(ctx, r.pool, id)
}

// GetAll возвращает все теги, упорядоченные по id
func (r *tagRepo) GetAll(ctx context.Context) ([]model.Tag, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tag ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Tag])
	if err != nil {
		return nil, fmt.Errorf("collect tags: %w", err)
	}
	return tags, nil
}

// Save создает или обновляет тег в отдельной транзакции
func (r *tagRepo) Save(ctx context.Context, tag model.Tag) (model.Tag, error) {
	if err := tag.Validate(); err != nil {
		return model.Tag{}, repository.WrapTx("save tag", err)
	}

	var saved model.Tag
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		saved, err = saveTag(ctx, tx, tag)
		return err
	})
	if err != nil {
		return model.Tag{}, repository.WrapTx("save tag", err)
	}
	return saved, nil
}

// Remove удаляет сохраненный тег
func (r *tagRepo) Remove(ctx context.Context, tag model.Tag) error {
	if !tag.IsPersisted() {
		return nil
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM tag WHERE id = $1`, tag.ID)
		return err
	})
	return repository.WrapTx("remove tag", err)
}

// GetByName ищет тег по точному совпадению имени
func (r *tagRepo) GetByName(ctx context.Context, name string) (model.Tag, bool, error) {
	return getTagByName(ctx, r.pool, name)
}

// GetOrCreate ищет тег по id, затем по имени, иначе создает новый
func (r *tagRepo) GetOrCreate(ctx context.Context, tag model.Tag) (model.Tag, error) {
	var resolved model.Tag
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		resolved, err = getOrCreateTag(ctx, tx, tag)
		return err
	})
	if err != nil {
		return model.Tag{}, repository.WrapTx("get or create tag", err)
	}
	return resolved, nil
}

// GetPersistedTagsFromList разрешает все теги списка в одной транзакции, порядок сохраняется
func (r *tagRepo) GetPersistedTagsFromList(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	persisted := make([]model.Tag, 0, len(tags))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, tag := range tags {
			resolved, err := getOrCreateTag(ctx, tx, tag)
			if err != nil {
				return err
			}
			persisted = append(persisted, resolved)
		}
		return nil
	})
	if err != nil {
		return nil, repository.WrapTx("resolve tags", err)
	}
	return persisted, nil
}

func getTagByID(ctx context.Context, q querier, id int64) (model.Tag, bool, error) {
	var tag model.Tag
	err := q.QueryRow(ctx, `SELECT id, name FROM tag WHERE id = $1`, id).Scan(&tag.ID, &tag.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Tag{}, false, nil
	}
	if err != nil {
		return model.Tag{}, false, fmt.Errorf("select tag %d: %w", id, err)
	}
	return tag, true, nil
}

func getTagByName(ctx context.Context, q querier, name string) (model.Tag, bool, error) {
	rows, err := q.Query(ctx, `SELECT id, name FROM tag WHERE name = $1 LIMIT 2`, name)
	if err != nil {
		return model.Tag{}, false, fmt.Errorf("select tag by name: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Tag])
	if err != nil {
		return model.Tag{}, false, fmt.Errorf("collect tags: %w", err)
	}
	// Имя уникально, поэтому неоднозначное совпадение считаем отсутствием тега
	if len(tags) != 1 {
		return model.Tag{}, false, nil
	}
	return tags[0], true, nil
}

func getOrCreateTag(ctx context.Context, tx pgx.Tx, tag model.Tag) (model.Tag, error) {
	if tag.IsPersisted() {
		loaded, found, err := getTagByID(ctx, tx, tag.ID)
		if err != nil || found {
			return loaded, err
		}
	}

	loaded, found, err := getTagByName(ctx, tx, tag.Name)
	if err != nil || found {
		return loaded, err
	}

	if err := tag.Validate(); err != nil {
		return model.Tag{}, err
	}

	// Вставка в savepoint: при параллельном создании тега с тем же именем
	// откатываемся к savepoint и читаем строку, созданную другой транзакцией
	var created model.Tag
	err = pgx.BeginFunc(ctx, tx, func(sp pgx.Tx) error {
		var err error
		created, err = insertTag(ctx, sp, tag)
		return err
	})
	if isUniqueViolation(err) {
		loaded, found, lookupErr := getTagByName(ctx, tx, tag.Name)
		if lookupErr == nil && found {
			return loaded, nil
		}
	}
	return created, err
}

func saveTag(ctx context.Context, q querier, tag model.Tag) (model.Tag, error) {
	if tag.IsPersisted() {
		cmd, err := q.Exec(ctx, `UPDATE tag SET name = $2 WHERE id = $1`, tag.ID, tag.Name)
		if err != nil {
			return model.Tag{}, fmt.Errorf("update tag %d: %w", tag.ID, err)
		}
		if cmd.RowsAffected() > 0 {
			return tag, nil
		}
		// merge несуществующего id создает новую строку с новым id
	}
	return insertTag(ctx, q, tag)
}

func insertTag(ctx context.Context, q querier, tag model.Tag) (model.Tag, error) {
	err := q.QueryRow(ctx, `INSERT INTO tag (name) VALUES ($1) RETURNING id`, tag.Name).Scan(&tag.ID)
	if err != nil {
		return model.Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return tag, nil
}
