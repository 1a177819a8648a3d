package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sergeybelanov/shop/internal/domain"
)

// idempotencyKeyHeader — заголовок, которым клиент помечает повторяемый запрос.
const idempotencyKeyHeader = "Idempotency-Key"

// defaultIdempotencyTTL — срок хранения ключа после первого запроса.
const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyMiddleware обеспечивает безопасные повторы создающих запросов.
// Завершённый запрос с тем же ключом и телом отдаёт сохранённый ответ,
// тот же ключ с другим телом отклоняется.
type IdempotencyMiddleware struct {
	repo   domain.IdempotencyRepository
	ttl    time.Duration
	logger *log.Entry
}

// NewIdempotencyMiddleware создаёт middleware поверх переданного хранилища
// ключей. Нулевой ttl заменяется значением по умолчанию.
func NewIdempotencyMiddleware(repo domain.IdempotencyRepository, ttl time.Duration, logger *log.Entry) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	if logger == nil {
		logger = log.New().WithField("component", "idempotency")
	}
	return &IdempotencyMiddleware{repo: repo, ttl: ttl, logger: logger}
}

// Handle оборачивает хендлер идемпотентной обработкой. Запросы без
// Idempotency-Key проходят насквозь.
func (m *IdempotencyMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(idempotencyKeyHeader)
		if key == "" || m.repo == nil {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_body", "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		requestHash := hashRequest(r.Method, r.URL.Path, body)

		if record, err := m.repo.Get(key); err == nil {
			if done := m.replay(w, record, requestHash); done {
				return
			}
		} else if !errors.Is(err, domain.ErrIdempotencyNotFound) {
			m.logger.WithError(err).Error("idempotency lookup failed")
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		if _, err := m.repo.CreateProcessing(key, requestHash, time.Now().UTC().Add(m.ttl)); err != nil {
			if errors.Is(err, domain.ErrIdempotencyConflict) {
				respondError(w, http.StatusConflict, "idempotency_conflict", domain.ErrIdempotencyConflict.Error())
				return
			}
			m.logger.WithError(err).Error("idempotency register failed")
			respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}

		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		m.finish(key, recorder)
	})
}

// replay отдаёт сохранённый ответ по ранее виденному ключу и сообщает,
// обработан ли запрос. false означает, что выполнение нужно повторить:
// сохранён 5xx, и клиент имеет право на новую попытку.
func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, record domain.IdempotencyRecord, requestHash string) bool {
	if record.RequestHash != requestHash {
		respondError(w, http.StatusConflict, "idempotency_conflict", domain.ErrIdempotencyConflict.Error())
		return true
	}
	if record.Status == domain.IdempotencyStatusProcessing {
		respondError(w, http.StatusConflict, "request_in_progress", domain.ErrIdempotencyInProgress.Error())
		return true
	}
	if record.Status == domain.IdempotencyStatusFailed && record.HTTPStatus >= http.StatusInternalServerError {
		return false
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotency-Replayed", "true")
	w.WriteHeader(record.HTTPStatus)
	if _, err := w.Write(record.ResponseBody); err != nil {
		m.logger.WithError(err).Error("failed to write replayed response")
	}
	return true
}

func (m *IdempotencyMiddleware) finish(key string, recorder *responseRecorder) {
	var err error
	if recorder.status < http.StatusBadRequest {
		err = m.repo.MarkDone(key, recorder.body.Bytes(), recorder.status)
	} else {
		err = m.repo.MarkFailed(key, recorder.body.Bytes(), recorder.status)
	}
	if err != nil {
		m.logger.WithError(err).WithField("key", key).Error("failed to store idempotent response")
	}
}

func hashRequest(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// responseRecorder дублирует ответ хендлера в буфер для последующего replay.
type responseRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
