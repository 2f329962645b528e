// Package respond - общий для REST-обработчиков формат ответов и ошибок.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"dispatch/internal/entities"
	"dispatch/internal/service/assignment"
	"dispatch/internal/service/courier"
	"dispatch/internal/service/dispatch"
	"dispatch/internal/service/fulfillment"
	"dispatch/internal/service/location"
	"dispatch/internal/service/matching"
	"dispatch/pkg/logger"
)

const (
	codeInvalidRequest = "invalid_request"
	codeRateLimited    = "rate_limited"
	codeInternal       = "internal"
)

type errorLogger interface {
	Error(msg string, fields ...logger.Field)
}

type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, log errorLogger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("encode JSON response", logger.NewField("error", err))
	}
}

func BadRequest(w http.ResponseWriter, log errorLogger, message string) {
	JSON(w, log, http.StatusBadRequest, ErrorBody{Error: codeInvalidRequest, Message: message})
}

// Fail отвечает на ошибку сервиса. Бизнес-исходы уходят клиенту с машинным кодом,
// текст инфраструктурных ошибок наружу не попадает.
func Fail(w http.ResponseWriter, log errorLogger, err error) {
	status := StatusCode(err)
	body := ErrorBody{Error: entities.ErrorCode(err), Message: err.Error()}

	// курьер видит ровно "N of M items still need proof", без контекста вызова
	var incomplete *entities.IncompleteVerificationError
	if errors.As(err, &incomplete) {
		body.Message = incomplete.Error()
	}

	switch {
	case status == http.StatusInternalServerError:
		log.Error("request failed", logger.NewField("error", err))
		body = ErrorBody{Error: codeInternal, Message: "internal error"}
	case status == http.StatusTooManyRequests:
		body.Error = codeRateLimited
	case body.Error == "":
		body.Error = codeInvalidRequest
	}

	JSON(w, log, status, body)
}

func StatusCode(err error) int {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound),
		errors.Is(err, entities.ErrCourierNotFound),
		errors.Is(err, entities.ErrAssignmentNotFound):
		return http.StatusNotFound

	case errors.Is(err, entities.ErrCourierMismatch):
		return http.StatusForbidden

	case errors.Is(err, entities.ErrAssignmentExpired):
		return http.StatusGone

	case errors.Is(err, entities.ErrIncompleteVerification),
		errors.Is(err, entities.ErrInvalidDeliveryProof):
		return http.StatusUnprocessableEntity

	case errors.Is(err, entities.ErrAlreadyClaimed),
		errors.Is(err, entities.ErrOrderNotReady),
		errors.Is(err, entities.ErrCourierUnavailable),
		errors.Is(err, entities.ErrInvalidTransition),
		errors.Is(err, entities.ErrStaleUpdate),
		errors.Is(err, entities.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, location.ErrPingRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, entities.ErrInvalidCoordinate),
		errors.Is(err, entities.ErrInvalidTimestamp),
		errors.Is(err, entities.ErrInvalidProof),
		errors.Is(err, entities.ErrLineItemOutOfRange),
		errors.Is(err, location.ErrInvalidStatus),
		errors.Is(err, matching.ErrInvalidRadius),
		errors.Is(err, matching.ErrInvalidLimit),
		errors.Is(err, assignment.ErrInvalidDecision),
		errors.Is(err, assignment.ErrInvalidID),
		errors.Is(err, courier.ErrMissingRequiredFields),
		errors.Is(err, courier.ErrInvalidCourierID),
		errors.Is(err, courier.ErrInvalidName),
		errors.Is(err, courier.ErrInvalidPhone),
		errors.Is(err, courier.ErrInvalidTransport),
		errors.Is(err, courier.ErrStatusNotEditable),
		errors.Is(err, fulfillment.ErrMissingRequiredFields),
		errors.Is(err, fulfillment.ErrInvalidLineItem),
		errors.Is(err, fulfillment.ErrInvalidCurrency),
		errors.Is(err, fulfillment.ErrInvalidID),
		errors.Is(err, dispatch.ErrInvalidCustomerID),
		errors.Is(err, dispatch.ErrInvalidViewer),
		errors.Is(err, dispatch.ErrInvalidFilter):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
