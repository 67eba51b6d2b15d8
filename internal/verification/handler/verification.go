package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"dira/internal/verification/service"
	httputil "dira/pkg/http"
	"dira/pkg/logger"
)

type VerificationHandler struct {
	service service.VerificationService
	log     *logger.Logger
}

func NewVerificationHandler(service service.VerificationService, log *logger.Logger) *VerificationHandler {
	return &VerificationHandler{
		service: service,
		log:     log,
	}
}

type verifyRequest struct {
	FileURL      string  `json:"file_url"`
	DeclaredRent float64 `json:"declared_rent"`
}

func (h *VerificationHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Verify", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Verify(r.Context(), req.FileURL, req.DeclaredRent)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Verify", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

func (h *VerificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/contracts/verify", h.Verify)
}
