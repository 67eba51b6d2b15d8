package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"dira/internal/emergency/service"
	httputil "dira/pkg/http"
	"dira/pkg/logger"
)

type EmergencyHandler struct {
	service service.EmergencyService
	log     *logger.Logger
}

func NewEmergencyHandler(service service.EmergencyService, log *logger.Logger) *EmergencyHandler {
	return &EmergencyHandler{
		service: service,
		log:     log,
	}
}

func (h *EmergencyHandler) TriggerSOS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	result, err := h.service.TriggerSOS(r.Context(), bookingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "TriggerSOS", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "TriggerSOS", "operation", "WriteCreated", "error", err)
	}
}

type swapRequest struct {
	NewListingID string `json:"new_listing_id"`
}

func (h *EmergencyHandler) EvaluateSwap(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bookingID := ps.ByName("id")

	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "EvaluateSwap", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.EvaluateSwap(r.Context(), bookingID, req.NewListingID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "EvaluateSwap", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "EvaluateSwap", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EmergencyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/sos", h.TriggerSOS)
	router.POST("/api/v1/bookings/:id/emergency-swap", h.EvaluateSwap)
}
