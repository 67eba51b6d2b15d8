package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"dira/internal/pricing/service"
	apperrors "dira/pkg/errors"
	httputil "dira/pkg/http"
	"dira/pkg/logger"
)

type PricingHandler struct {
	service service.PricingService
	log     *logger.Logger
}

func NewPricingHandler(service service.PricingService, log *logger.Logger) *PricingHandler {
	return &PricingHandler{
		service: service,
		log:     log,
	}
}

type rentEstimateRequest struct {
	Zone      string           `json:"zone"`
	Rooms     int              `json:"rooms"`
	AssetType string           `json:"asset_type"`
	Features  service.Features `json:"features"`
}

func (h *PricingHandler) EstimateRent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req rentEstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "EstimateRent", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	estimate := h.service.EstimateMonthlyRent(req.Zone, req.Rooms, req.AssetType, req.Features)

	if err := httputil.WriteSuccess(w, estimate); err != nil {
		h.log.Error("failed to write success response", "handler", "EstimateRent", "operation", "WriteSuccess", "error", err)
	}
}

type nightlyRateRequest struct {
	VerifiedRent int64      `json:"verified_rent"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
}

func (h *PricingHandler) NightlyRate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req nightlyRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "NightlyRate", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if req.VerifiedRent <= 0 {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("verified_rent must be positive")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "NightlyRate", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	checkIn := time.Time{}
	if req.CheckIn != nil {
		checkIn = *req.CheckIn
	}

	rate := h.service.CalculateNightlyRate(req.VerifiedRent, checkIn)

	if err := httputil.WriteSuccess(w, rate); err != nil {
		h.log.Error("failed to write success response", "handler", "NightlyRate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PricingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/pricing/rent-estimate", h.EstimateRent)
	router.POST("/api/v1/pricing/nightly-rate", h.NightlyRate)
}
