package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"notes-service/internal/model"
)

// writeError конвертирует ошибки сервиса в HTTP ответ
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var attrErr *model.AttributeError
	if errors.As(err, &attrErr) {
		status := http.StatusBadRequest
		if attrErr.NotFound {
			status = h.missingEntityStatus
		}
		writeText(w, status, attrErr.Message)
		return
	}

	// Нарушения ограничений приходят обернутыми в repository.TxError
	var constraintErr *model.ConstraintError
	if errors.As(err, &constraintErr) {
		writeJSON(w, http.StatusBadRequest, constraintErr.Messages())
		return
	}

	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeText(w, http.StatusInternalServerError, err.Error())
}
