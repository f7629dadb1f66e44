package model

// Tag представляет тег, уникальный по имени
type Tag struct {
	ID   int64  // Идентификатор, 0 - тег еще не сохранен
	Name string `validate:"required"` // Имя тега
}

// IsPersisted проверяет, что тегу уже назначен id
func (t Tag) IsPersisted() bool {
	return t.ID != 0
}

// Validate проверяет ограничения полей тега
func (t Tag) Validate() error {
	return validateStruct(t)
}
