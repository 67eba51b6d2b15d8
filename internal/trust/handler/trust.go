package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"dira/internal/trust/service"
	httputil "dira/pkg/http"
	"dira/pkg/logger"
)

type TrustHandler struct {
	service service.TrustService
	log     *logger.Logger
}

func NewTrustHandler(service service.TrustService, log *logger.Logger) *TrustHandler {
	return &TrustHandler{
		service: service,
		log:     log,
	}
}

type reportRequest struct {
	Reason string `json:"reason"`
}

func (h *TrustHandler) Report(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	listingID := ps.ByName("id")

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Report", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.RecordReport(r.Context(), listingID, req.Reason)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Report", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Report", "operation", "WriteSuccess", "error", err)
	}
}

type monitorRequest struct {
	Text string `json:"text"`
}

func (h *TrustHandler) Monitor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	messageID := ps.ByName("id")

	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Monitor", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.MonitorMessage(r.Context(), messageID, req.Text)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Monitor", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Monitor", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TrustHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/listings/:id/reports", h.Report)
	router.POST("/api/v1/messages/:id/monitor", h.Monitor)
}
