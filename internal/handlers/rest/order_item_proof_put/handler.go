package order_item_proof_put

import (
	"net/http"
	"strconv"
	"strings"

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

// ServeHTTP отмечает позицию заказа проверенной. Повторная отметка заменяет доказательство.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := strings.TrimSpace(vars["id"])
	if id == "" {
		respond.BadRequest(w, h.log, "order id is required")
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respond.BadRequest(w, h.log, "item index must be an integer")
		return
	}

	var proofDTO dto.ItemProof
	if err := respond.Decode(r, &proofDTO); err != nil {
		respond.BadRequest(w, h.log, "malformed proof body")
		return
	}
	if proofDTO.CourierID == "" {
		respond.BadRequest(w, h.log, "courier_id is required")
		return
	}

	item, err := h.service.MarkItem(r.Context(), id, proofDTO.CourierID, index, proofDTO.ProofRef)
	if err != nil {
		respond.Fail(w, h.log, err)
		return
	}

	respond.JSON(w, h.log, http.StatusOK, dto.NewVerificationItem(item))
}
