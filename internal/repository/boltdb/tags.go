package boltdb

import (
	"context"
	"errors"

	bolt "go.etcd.io/bbolt"

	"notes-service/internal/model"
	"notes-service/internal/repository"
)

// ErrDuplicateTagName возвращается при нарушении уникальности имени тега
var ErrDuplicateTagName = errors.New("duplicate key value violates unique constraint on tag name")

var _ repository.TagRepository = (*tagRepo)(nil)

type tagRepo struct {
	store *Store
}

// NewTagRepository создает репозиторий тегов поверх BoltDB
func NewTagRepository(store *Store) repository.TagRepository {
	return &tagRepo{store: store}
}

// GetByID возвращает тег по id
func (r *tagRepo) GetByID(ctx context.Context, id int64) (model.Tag, bool, error) {
	var (
		tag   model.Tag
		found bool
	)
	err := r.store.DB.View(func(tx *bolt.Tx) error {
		var err error
		tag, found, err = getTag(tx, id)
		return err
	})
	return tag, found, err
}

// GetAll возвращает все теги, упорядоченные по id
func (r *tagRepo) GetAll(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := r.store.DB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tagsBucket).ForEach(func(_, data []byte) error {
			var tag model.Tag
			if err := decode(data, &tag); err != nil {
				return err
			}
			tags = append(tags, tag)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// Save создает или обновляет тег
func (r *tagRepo) Save(ctx context.Context, tag model.Tag) (model.Tag, error) {
	var saved model.Tag
	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		var err error
		saved, err = saveTag(tx, tag)
		return err
	})
	return saved, repository.WrapTx("save tag", err)
}

// Remove удаляет сохраненный тег
func (r *tagRepo) Remove(ctx context.Context, tag model.Tag) error {
	if !tag.IsPersisted() {
		return nil
	}

	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		stored, ok, err := getTag(tx, tag.ID)
		if err != nil || !ok {
			return err
		}
		if err := tx.Bucket(tagNamesBucket).Delete([]byte(stored.Name)); err != nil {
			return err
		}
		return tx.Bucket(tagsBucket).Delete(idToKey(tag.ID))
	})
	return repository.WrapTx("remove tag", err)
}

// GetByName ищет тег по точному совпадению имени
func (r *tagRepo) GetByName(ctx context.Context, name string) (model.Tag, bool, error) {
	var (
		tag   model.Tag
		found bool
	)
	err := r.store.DB.View(func(tx *bolt.Tx) error {
		var err error
		tag, found, err = tagByName(tx, name)
		return err
	})
	return tag, found, err
}

// GetOrCreate ищет тег по id, затем по имени, иначе создает новый
func (r *tagRepo) GetOrCreate(ctx context.Context, tag model.Tag) (model.Tag, error) {
	var resolved model.Tag
	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		var err error
		resolved, err = getOrCreateTag(tx, tag)
		return err
	})
	return resolved, repository.WrapTx("get or create tag", err)
}

// GetPersistedTagsFromList разрешает каждый тег списка в одной транзакции, порядок сохраняется
func (r *tagRepo) GetPersistedTagsFromList(ctx context.Context, tags []model.Tag) ([]model.Tag, error) {
	persisted := make([]model.Tag, 0, len(tags))
	err := r.store.DB.Update(func(tx *bolt.Tx) error {
		for _, tag := range tags {
			resolved, err := getOrCreateTag(tx, tag)
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

func getOrCreateTag(tx *bolt.Tx, tag model.Tag) (model.Tag, error) {
	if tag.IsPersisted() {
		loaded, ok, err := getTag(tx, tag.ID)
		if err != nil || ok {
			return loaded, err
		}
	}

	loaded, ok, err := tagByName(tx, tag.Name)
	if err != nil || ok {
		return loaded, err
	}

	return saveTag(tx, tag)
}

func tagByName(tx *bolt.Tx, name string) (model.Tag, bool, error) {
	key := tx.Bucket(tagNamesBucket).Get([]byte(name))
	if key == nil {
		return model.Tag{}, false, nil
	}
	return getTag(tx, keyToID(key))
}

func saveTag(tx *bolt.Tx, tag model.Tag) (model.Tag, error) {
	if err := tag.Validate(); err != nil {
		return model.Tag{}, err
	}

	names := tx.Bucket(tagNamesBucket)
	if owner := names.Get([]byte(tag.Name)); owner != nil && keyToID(owner) != tag.ID {
		return model.Tag{}, ErrDuplicateTagName
	}

	tags := tx.Bucket(tagsBucket)
	previous, ok, err := getTag(tx, tag.ID)
	if err != nil {
		return model.Tag{}, err
	}
	if ok {
		if err := names.Delete([]byte(previous.Name)); err != nil {
			return model.Tag{}, err
		}
	} else {
		// merge несуществующего id создает новую запись с новым id
		seq, err := tags.NextSequence()
		if err != nil {
			return model.Tag{}, err
		}
		tag.ID = int64(seq)
	}

	data, err := encode(tag)
	if err != nil {
		return model.Tag{}, err
	}
	key := idToKey(tag.ID)
	if err := tags.Put(key, data); err != nil {
		return model.Tag{}, err
	}
	if err := names.Put([]byte(tag.Name), key); err != nil {
		return model.Tag{}, err
	}
	return tag, nil
}
