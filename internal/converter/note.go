package converter

import (
	"notes-service/internal/model"
)

// NoteDTO JSON представление заметки в HTTP API
type NoteDTO struct {
	ID        *int64    `json:"id"`
	Name      *string   `json:"name"`
	Content   *string   `json:"content"`
	CreatedAt *DateTime `json:"createdAt"`
	Tags      []TagDTO  `json:"tags"`
}

// TagDTO JSON представление тега в HTTP API
type TagDTO struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

// DTOToModel конвертирует входящую заметку в domain модель.
// Отсутствующие поля превращаются в нулевые значения
func DTOToModel(dto NoteDTO) model.Note {
	note := model.Note{
		Tags: DTOsToTags(dto.Tags),
	}
	if dto.ID != nil {
		note.ID = *dto.ID
	}
	if dto.Name != nil {
		note.Name = *dto.Name
	}
	if dto.Content != nil {
		note.Content = *dto.Content
	}
	if dto.CreatedAt != nil {
		note.CreatedAt = dto.CreatedAt.Time
	}
	return note
}

// ModelToDTO конвертирует domain модель заметки в JSON представление
func ModelToDTO(note model.Note) NoteDTO {
	dto := NoteDTO{
		Content: &note.Content,
		Tags:    TagsToDTOs(note.Tags),
	}
	if note.ID != 0 {
		dto.ID = &note.ID
	}
	if note.Name != "" {
		dto.Name = &note.Name
	}
	if !note.CreatedAt.IsZero() {
		dto.CreatedAt = &DateTime{Time: note.CreatedAt}
	}
	return dto
}

// ModelsToDTOs конвертирует слайс заметок, nil превращается в пустой массив
func ModelsToDTOs(notes []model.Note) []NoteDTO {
	dtos := make([]NoteDTO, len(notes))
	for i, note := range notes {
		dtos[i] = ModelToDTO(note)
	}
	return dtos
}

// DTOsToTags конвертирует теги из запроса
func DTOsToTags(dtos []TagDTO) []model.Tag {
	tags := make([]model.Tag, 0, len(dtos))
	for _, dto := range dtos {
		var tag model.Tag
		if dto.ID != nil {
			tag.ID = *dto.ID
		}
		if dto.Name != nil {
			tag.Name = *dto.Name
		}
		tags = append(tags, tag)
	}
	return tags
}

// TagsToDTOs конвертирует теги для ответа, nil превращается в пустой массив
func TagsToDTOs(tags []model.Tag) []TagDTO {
	dtos := make([]TagDTO, len(tags))
	for i := range tags {
		dtos[i] = TagDTO{ID: &tags[i].ID, Name: &tags[i].Name}
	}
	return dtos
}
