package model

import (
	"time"
)

// Note представляет заметку (доменная модель)
type Note struct {
	ID        int64     // Идентификатор, 0 - заметка еще не сохранена
	Name      string    // Название заметки, участвует в поиске
	Content   string    `validate:"required"` // Содержание заметки
	CreatedAt time.Time `validate:"required"` // Время создания, выставляется сервером
	Tags      []Tag     `validate:"dive"` // Теги заметки в порядке добавления
}

// NewNote создает новую заметку и проверяет, что все теги уже сохранены
func NewNote(name, content string, createdAt time.Time, tags []Tag) (Note, error) {
	note := Note{
		Name:      name,
		Content:   content,
		CreatedAt: createdAt,
	}
	if err := note.SetTags(tags); err != nil {
		return Note{}, err
	}
	return note, nil
}

// ReplaceNote собирает заметку для обновления:
// id и время создания берутся из сохраненной версии, остальное из запроса
func ReplaceNote(original, payload Note, tags []Tag) Note {
	return Note{
		ID:        original.ID,
		Name:      payload.Name,
		Content:   payload.Content,
		CreatedAt: original.CreatedAt,
		Tags:      tags,
	}
}

// SetTags заменяет теги заметки.
// Тег без id считается несохраненным, в этом случае возвращается ошибка
func (n *Note) SetTags(tags []Tag) error {
	if err := CheckPersisted(tags); err != nil {
		return err
	}
	n.Tags = tags
	return nil
}

// IsPersisted проверяет, что заметке уже назначен id
func (n Note) IsPersisted() bool {
	return n.ID != 0
}

// Validate проверяет ограничения полей заметки и ее тегов
func (n Note) Validate() error {
	return validateStruct(n)
}

// CheckPersisted возвращает ошибку, если хотя бы один тег не сохранен
func CheckPersisted(tags []Tag) error {
	for _, t := range tags {
		if !t.IsPersisted() {
			return NewAttributeError("Tag is not persisted")
		}
	}
	return nil
}
