package boltdb

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"notes-service/internal/model"
)

var (
	notesBucket    = []byte("notes")
	tagsBucket     = []byte("tags")
	tagNamesBucket = []byte("tag_names") // имя тега → id, ограничение уникальности
)

// noteRecord заметка со ссылками на теги по id
type noteRecord struct {
	ID        int64
	Name      string
	Content   string
	CreatedAt time.Time
	TagIDs    []int64
}

// Store файловое хранилище заметок и тегов на BoltDB.
// Все записи идут через db.Update, который сериализует транзакции на запись
type Store struct {
	DB *bolt.DB
}

// Open открывает (или создает) файл базы и необходимые бакеты
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt.Open(%s): %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{notesBucket, tagsBucket, tagNamesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db}, nil
}

// Close закрывает базу и освобождает блокировку файла
func (s *Store) Close() error {
	return s.DB.Close()
}

// Ключи big-endian, поэтому курсор обходит записи в порядке id
func idToKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func keyToID(key []byte) int64 {
	return int64(binary.BigEndian.Uint64(key))
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(v); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}
	return nil
}

func getTag(tx *bolt.Tx, id int64) (model.Tag, bool, error) {
	data := tx.Bucket(tagsBucket).Get(idToKey(id))
	if data == nil {
		return model.Tag{}, false, nil
	}
	var tag model.Tag
	if err := decode(data, &tag); err != nil {
		return model.Tag{}, false, err
	}
	return tag, true, nil
}

// toModel собирает заметку вместе с актуальными тегами
func toModel(tx *bolt.Tx, rec noteRecord) (model.Note, error) {
	note := model.Note{
		ID:        rec.ID,
		Name:      rec.Name,
		Content:   rec.Content,
		CreatedAt: rec.CreatedAt,
		Tags:      make([]model.Tag, 0, len(rec.TagIDs)),
	}
	for _, id := range rec.TagIDs {
		tag, ok, err := getTag(tx, id)
		if err != nil {
			return model.Note{}, err
		}
		if ok {
			note.Tags = append(note.Tags, tag)
		}
	}
	return note, nil
}

// filterNotes возвращает заметки, подходящие под условие, упорядоченные по id
func (s *Store) filterNotes(match func(noteRecord) bool) ([]model.Note, error) {
	notes := make([]model.Note, 0)
	err := s.DB.View(func(tx *bolt.Tx) error {
		return tx.Bucket(notesBucket).ForEach(func(_, data []byte) error {
			var rec noteRecord
			if err := decode(data, &rec); err != nil {
				return err
			}
			if !match(rec) {
				return nil
			}
			note, err := toModel(tx, rec)
			if err != nil {
				return err
			}
			notes = append(notes, note)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}
