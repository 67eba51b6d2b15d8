package service

import (
	"math"
	"time"

	"dira/pkg/config"
	"dira/pkg/sanitizer"
)

// Features are the listing attributes that carry a rent premium.
type Features struct {
	Parking   bool `json:"parking"`
	Renovated bool `json:"renovated"`
}

// RentEstimate is the monthly rent estimate for a unit, in whole shekels.
type RentEstimate struct {
	MonthlyRent int64   `json:"monthly_rent"`
	Zone        string  `json:"zone"`
	BaseRent    int64   `json:"base_rent_per_room"`
	Multiplier  float64 `json:"asset_type_multiplier"`
}

// NightlyRate is a recommended nightly price with its allowed band.
type NightlyRate struct {
	Recommended int64   `json:"recommended"`
	MinLimit    int64   `json:"min_limit"`
	MaxLimit    int64   `json:"max_limit"`
	DailyCost   float64 `json:"daily_cost"`
	Season      string  `json:"season"`
	Label       string  `json:"label"`
}

type PricingService interface {
	EstimateMonthlyRent(zoneID string, rooms int, assetType string, features Features) RentEstimate
	CalculateNightlyRate(verifiedRent int64, checkIn time.Time) NightlyRate
}

type pricingService struct {
	cfg *config.Config
}

func NewPricingService(cfg *config.Config) PricingService {
	return &pricingService{cfg: cfg}
}

// EstimateMonthlyRent never fails: unknown zones fall back to the default
// base rent and unknown asset types to a 1.0 multiplier. Rounding is
// always upward, in the host's favor.
func (s *pricingService) EstimateMonthlyRent(zoneID string, rooms int, assetType string, features Features) RentEstimate {
	zone := sanitizer.SanitizeZoneID(zoneID)

	baseRent, ok := s.cfg.ZoneBaseRents[zone]
	if !ok {
		baseRent = s.cfg.DefaultZoneRent
	}

	if rooms < 1 {
		rooms = 1
	}
	base := float64(baseRent) * float64(rooms)

	multiplier, ok := s.cfg.AssetTypeMultipliers[sanitizer.SanitizeAssetType(assetType)]
	if !ok {
		multiplier = 1.0
	}

	premium := 0.0
	if features.Parking {
		premium += s.cfg.ParkingPremium
	}
	if features.Renovated {
		premium += s.cfg.RenovationPremium
	}

	monthly := int64(math.Ceil(base * multiplier * (1 + premium)))

	return RentEstimate{
		MonthlyRent: monthly,
		Zone:        zone,
		BaseRent:    baseRent,
		Multiplier:  multiplier,
	}
}

func (s *pricingService) CalculateNightlyRate(verifiedRent int64, checkIn time.Time) NightlyRate {
	if checkIn.IsZero() {
		checkIn = time.Now()
	}

	factor := s.cfg.NormalSeasonFactor
	season := "normal"
	label := "Regular season rate based on verified monthly rent"
	for _, m := range s.cfg.HighSeasonMonths {
		if checkIn.Month() == m {
			factor = s.cfg.HighSeasonFactor
			season = "high"
			label = "High season rate based on verified monthly rent"
			break
		}
	}

	dailyCost := float64(verifiedRent) / 30
	recommended := int64(math.Ceil(dailyCost * factor))

	return NightlyRate{
		Recommended: recommended,
		MinLimit:    int64(math.Floor(float64(recommended) * 0.8)),
		MaxLimit:    int64(math.Ceil(float64(recommended) * 1.3)),
		DailyCost:   dailyCost,
		Season:      season,
		Label:       label,
	}
}
