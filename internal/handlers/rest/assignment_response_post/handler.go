package assignment_response_post

import (
	"net/http"
	"strings"

	"dispatch/internal/entities"
	"dispatch/internal/handlers/rest/dto"
	"dispatch/internal/handlers/rest/respond"

	"github.com/gorilla/mux"
)

type Handler struct {
	log     handlerLogger
	service Service
}

func New(log handlerLogger, service Service) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:     handlerLog,
		service: service,
	}
}

// ServeHTTP принимает ответ курьера на предложение. Ответ после истечения окна - 410 assignment_expired.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "assignment id is required")
		return
	}

	var responseDTO dto.OfferResponse
	if err := respond.Decode(r, &responseDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed response body")
		return
	}
	if responseDTO.CourierID == "" {
		respond.BadRequest(w, h.log, "courier_id is required")
		return
	}

	decision := entities.Decision(strings.ToLower(strings.TrimSpace(responseDTO.Decision)))
	assignment, err := h.service.Respond(r.Context(), id, responseDTO.CourierID, decision)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, dto.NewAssignment(assignment))
}
