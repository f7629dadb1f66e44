package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"notes-service/internal/converter"
	"notes-service/internal/model"
)

// ListNotes возвращает все заметки
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelsToDTOs(notes))
}

// ListNotesByTag возвращает заметки с указанным тегом
func (h *Handler) ListNotesByTag(w http.ResponseWriter, r *http.Request) {
	tagID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeText(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	notes, err := h.noteService.ListByTag(r.Context(), tagID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelsToDTOs(notes))
}

// ListNotesSince возвращает заметки, созданные не раньше указанного момента
func (h *Handler) ListNotesSince(w http.ResponseWriter, r *http.Request) {
	raw, err := pathParam(r, "since")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	since, err := converter.ParseDateTime(raw)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	notes, err := h.noteService.ListSince(r.Context(), since)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelsToDTOs(notes))
}

// SearchNotes ищет заметки по подстроке в name или content
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	query, err := pathParam(r, "query")
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(query) == "" {
		writeText(w, http.StatusBadRequest, "search query must not be blank")
		return
	}

	notes, err := h.noteService.Search(r.Context(), query)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelsToDTOs(notes))
}

// CreateNote создает новую заметку
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}

	created, err := h.noteService.Create(r.Context(), note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelToDTO(created))
}

// UpdateNote обновляет существующую заметку
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}

	updated, err := h.noteService.Update(r.Context(), note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.ModelToDTO(updated))
}

// DeleteNote удаляет заметку, id берется из тела запроса
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, ok := decodeNote(w, r)
	if !ok {
		return
	}

	if err := h.noteService.Delete(r.Context(), note.ID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func decodeNote(w http.ResponseWriter, r *http.Request) (model.Note, bool) {
	var dto converter.NoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeText(w, http.StatusBadRequest, fmt.Sprintf("malformed note body: %v", err))
		return model.Note{}, false
	}
	return converter.DTOToModel(dto), true
}

// pathParam возвращает декодированный параметр пути.
// chi отдает параметр в экранированном виде, если у запроса есть RawPath
func pathParam(r *http.Request, name string) (string, error) {
	value := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return value, nil
	}
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return "", fmt.Errorf("invalid %s parameter: %w", name, err)
	}
	return decoded, nil
}
