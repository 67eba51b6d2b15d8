package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"dira/internal/deposit/service"
	httputil "dira/pkg/http"
	"dira/pkg/logger"
)

type DepositHandler struct {
	service service.DepositService
	log     *logger.Logger
}

func NewDepositHandler(service service.DepositService, log *logger.Logger) *DepositHandler {
	return &DepositHandler{
		service: service,
		log:     log,
	}
}

func (h *DepositHandler) Authorize(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	var req service.AuthorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Authorize", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Authorize(r.Context(), bookingID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Authorize", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Authorize", "operation", "WriteCreated", "error", err)
	}
}

func (h *DepositHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	if err := h.service.Release(r.Context(), bookingID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Release", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DepositHandler) Capture(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	var req service.CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Capture", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.CaptureForDamages(r.Context(), bookingID, &req); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Capture", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DepositHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/deposit/authorize", h.Authorize)
	router.POST("/api/v1/bookings/:id/deposit/release", h.Release)
	router.POST("/api/v1/bookings/:id/deposit/capture", h.Capture)
}
