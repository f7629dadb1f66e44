package memory

import (
	"context"
	"errors"
	"sort"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

// ErrDuplicateTagName возвращается при нарушении уникальности имени тега
var ErrDuplicateTagName = errors.New("duplicate key value violates unique constraint on tag name")

var _ repository.TagRepository = (*tagRepo)(nil)

type tagRepo struct {
	store *Store
}

// NewTagRepository создает in-memory репозиторий тегов поверх общего Store
func NewTagRepository(store *Store) repository.TagRepository {
	return &tagRepo{store: store}
}

// GetByID возвращает тег по id
func (r *tagRepo) GetByID(ctx context.Context, id int64) (model.Tag, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tag, ok := r.store.tags[id]
	return tag, ok, nil
}

// GetAll возвращает все теги, упорядоченные по id
func (r *tagRepo) GetAll(ctx context.Context) ([]model.Tag, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tags := make([]model.Tag, 0, len(r.store.tags))
	for _, tag := range r.store.tags {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })

	return tags, nil
}

// Save создает или обновляет тег
func (r *tagRepo) Save(ctx context.Context, tag model.Tag) (model.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	saved, err := r.save(tag)
	return saved, repository.WrapTx("save tag", err)
}

// Remove удаляет сохраненный тег
func (r *tagRepo) Remove(ctx context.Context, tag model.Tag) error {
	if !tag.IsPersisted() {
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.tags, tag.ID)
	return nil
}

// GetByName ищет тег по точному совпадению имени
func (r *tagRepo) GetByName(ctx context.Context, name string) (model.Tag, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	tag, ok := r.byName(name)
	return tag, ok, nil
}

// GetOrCreate ищет тег по id, затем по имени, иначе создает новый.
// Вся операция выполняется под одной блокировкой, поэтому гонки при создании нет
func (r *tagRepo) GetOrCreate(ctx context.Context, tag model.Tag) (model.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	resolved, err := r.getOrCreate(tag)
	return resolved, repository.WrapTx("get or create tag", err)
}

// GetPersistedTagsFromList разрешает каждый тег списка, порядок сохраняется.
// Если один из тегов не удалось сохранить, созданные ранее теги откатываются
func (r *tagRepo) GetPersistedTagsFromList(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var created []int64
	persisted := make([]model.Tag, 0, len(tags))
	for _, tag := range tags {
		before := r.store.tagSeq
		resolved, err := r.getOrCreate(tag)
		if err != nil {
			for _, id := range created {
				delete(r.store.tags, id)
			}
			return nil, repository.WrapTx("resolve tags", err)
		}
		if r.store.tagSeq != before {
			created = append(created, resolved.ID)
		}
		persisted = append(persisted, resolved)
	}

	return persisted, nil
}

func (r *tagRepo) getOrCreate(tag model.Tag) (model.Tag, error) {
	if tag.IsPersisted() {
		if loaded, ok := r.store.tags[tag.ID]; ok {
			return loaded, nil
		}
	}
	if loaded, ok := r.byName(tag.Name); ok {
		return loaded, nil
	}
	return r.save(tag)
}

func (r *tagRepo) byName(name string) (model.Tag, bool) {
	var found []model.Tag
	for _, tag := range r.store.tags {
		if tag.Name == name {
			found = append(found, tag)
		}
	}
	// Имя уникально, поэтому неоднозначное совпадение считаем отсутствием тега
	if len(found) != 1 {
		return model.Tag{}, false
	}
	return found[0], true
}

func (r *tagRepo) save(tag model.Tag) (model.Tag, error) {
	if err := tag.Validate(); err != nil {
		return model.Tag{}, err
	}
	for id, existing := range r.store.tags {
		if existing.Name == tag.Name && id != tag.ID {
			return model.Tag{}, ErrDuplicateTagName
		}
	}

	// merge несуществующего id создает новую строку с новым id
	if _, ok := r.store.tags[tag.ID]; !ok {
		r.store.tagSeq++
		tag.ID = r.store.tagSeq
	}
	r.store.tags[tag.ID] = tag

	return tag, nil
}
