package http

import (
	"net/http"

	"notes-service/internal/converter"
)

// ListTags возвращает все теги
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, converter.TagsToDTOs(tags))
}
