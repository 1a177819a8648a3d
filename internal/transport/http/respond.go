package http

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
)

// ErrorResponse — единый формат тела ошибки для всех эндпоинтов.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// conflictErrors — доменные отказы, которые наружу отдаются как 409:
// гонки версий и операции, несовместимые с текущим состоянием агрегата.
var conflictErrors = []error{
	domain.ErrVersionConflict,
	domain.ErrSKUAlreadyExists,
	domain.ErrDuplicateItem,
	domain.ErrInvalidStatusTransition,
	domain.ErrOrderNotModifiable,
	domain.ErrCustomerInfoNotModifiable,
	domain.ErrSubmitRequired,
}

// respondDomainError транслирует доменную ошибку в HTTP-статус:
// 404 для промахов, 409 для конфликтов состояния, 422 для нарушений
// доменных инвариантов, 500 для всего остального.
func respondDomainError(w http.ResponseWriter, logger *log.Entry, err error) {
	switch {
	case domain.IsNotFound(err) || errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case isConflict(err):
		respondError(w, http.StatusConflict, "conflict", err.Error())
	case domain.IsDomainValidation(err):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
	default:
		logger.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func isConflict(err error) bool {
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return false
	}
	return true
}
