package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	svc "notes-service/internal/service"
)

// Handler HTTP обработчики для заметок и тегов
type Handler struct {
	noteService svc.NoteService
	tagService  svc.TagService

	// missingEntityStatus статус ответа для ссылок на несуществующие сущности
	missingEntityStatus int
}

// NewHandler создает новый экземпляр HTTP хэндлера.
// missingEntityStatus 0 означает 400 Bad Request
func NewHandler(noteService svc.NoteService, tagService svc.TagService, missingEntityStatus int) *Handler {
	if missingEntityStatus == 0 {
		missingEntityStatus = http.StatusBadRequest
	}
	return &Handler{
		noteService:         noteService,
		tagService:          tagService,
		missingEntityStatus: missingEntityStatus,
	}
}

// Register регистрирует маршруты заметок и тегов
func (h *Handler) Register(r chi.Router) {
	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Get("/tag/{id}", h.ListNotesByTag)
		r.Get("/since/{since}", h.ListNotesSince)
		r.Get("/search/{query}", h.SearchNotes)
		r.Put("/", h.CreateNote)
		r.Post("/", h.UpdateNote)
		r.Delete("/", h.DeleteNote)
	})
	r.Get("/tags", h.ListTags)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
