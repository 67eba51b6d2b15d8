package service

import (
	"math"
	"testing"
	"time"

	"dira/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		HighSeasonMonths:     config.DefaultHighSeasonMonths,
		HighSeasonFactor:     config.DefaultHighSeasonFactor,
		NormalSeasonFactor:   config.DefaultNormalSeasonFactor,
		ParkingPremium:       config.DefaultParkingPremium,
		RenovationPremium:    config.DefaultRenovationPremium,
		ZoneBaseRents:        config.DefaultZoneBaseRents,
		DefaultZoneRent:      config.DefaultZoneRent,
		AssetTypeMultipliers: config.DefaultAssetTypeMultipliers,
	}
}

func TestEstimateMonthlyRent(t *testing.T) {
	svc := NewPricingService(testConfig())

	tests := []struct {
		name      string
		zone      string
		rooms     int
		assetType string
		features  Features
		want      int64
	}{
		{
			name:      "known zone no features",
			zone:      "tel-aviv",
			rooms:     3,
			assetType: "apartment",
			want:      7800,
		},
		{
			name:      "unknown zone falls back to default rent",
			zone:      "no-such-place",
			rooms:     2,
			assetType: "apartment",
			want:      3600,
		},
		{
			name:      "unknown asset type gets 1.0 multiplier",
			zone:      "haifa",
			rooms:     2,
			assetType: "castle",
			want:      3000,
		},
		{
			name:      "zero rooms treated as one",
			zone:      "haifa",
			rooms:     0,
			assetType: "apartment",
			want:      1500,
		},
		{
			name:      "parking premium",
			zone:      "haifa",
			rooms:     2,
			assetType: "apartment",
			features:  Features{Parking: true},
			want:      3090,
		},
		{
			name:      "parking and renovation compounded additively",
			zone:      "haifa",
			rooms:     2,
			assetType: "apartment",
			features:  Features{Parking: true, Renovated: true},
			want:      3391, // ceil(3000 * 1.13), float product lands just above 3390
		},
		{
			name:      "exact product needs no rounding",
			zone:      "jerusalem",
			rooms:     1,
			assetType: "studio",
			want:      1785, // 2100 * 0.85
		},
		{
			name:      "ceiling favors the host",
			zone:      "jerusalem",
			rooms:     1,
			assetType: "studio",
			features:  Features{Parking: true},
			want:      1839, // 2100 * 0.85 * 1.03 = 1838.55
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.EstimateMonthlyRent(tt.zone, tt.rooms, tt.assetType, tt.features)
			if got.MonthlyRent != tt.want {
				t.Errorf("EstimateMonthlyRent() = %d, want %d", got.MonthlyRent, tt.want)
			}
		})
	}
}

func TestEstimateMonthlyRent_MonotonicInRooms(t *testing.T) {
	svc := NewPricingService(testConfig())

	prev := int64(0)
	for rooms := 1; rooms <= 8; rooms++ {
		got := svc.EstimateMonthlyRent("tel-aviv", rooms, "apartment", Features{})
		if got.MonthlyRent < prev {
			t.Fatalf("rent decreased from %d to %d at rooms=%d", prev, got.MonthlyRent, rooms)
		}
		prev = got.MonthlyRent
	}
}

func TestEstimateMonthlyRent_MonotonicInFeatures(t *testing.T) {
	svc := NewPricingService(testConfig())

	for _, zone := range []string{"tel-aviv", "haifa", "nowhere"} {
		for _, assetType := range []string{"apartment", "penthouse", "unknown"} {
			base := svc.EstimateMonthlyRent(zone, 2, assetType, Features{}).MonthlyRent
			parking := svc.EstimateMonthlyRent(zone, 2, assetType, Features{Parking: true}).MonthlyRent
			both := svc.EstimateMonthlyRent(zone, 2, assetType, Features{Parking: true, Renovated: true}).MonthlyRent

			if parking < base {
				t.Errorf("zone=%s type=%s: parking premium lowered rent (%d < %d)", zone, assetType, parking, base)
			}
			if both < parking {
				t.Errorf("zone=%s type=%s: renovation premium lowered rent (%d < %d)", zone, assetType, both, parking)
			}
		}
	}
}

func TestEstimateMonthlyRent_ZoneSanitization(t *testing.T) {
	svc := NewPricingService(testConfig())

	pretty := svc.EstimateMonthlyRent("Tel Aviv ", 2, "apartment", Features{})
	canonical := svc.EstimateMonthlyRent("tel-aviv", 2, "apartment", Features{})

	if pretty.MonthlyRent != canonical.MonthlyRent {
		t.Errorf("display zone name estimated %d, canonical %d", pretty.MonthlyRent, canonical.MonthlyRent)
	}
}

func TestCalculateNightlyRate_Seasons(t *testing.T) {
	svc := NewPricingService(testConfig())

	january := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	july := time.Date(2026, time.July, 10, 0, 0, 0, 0, time.UTC)

	normal := svc.CalculateNightlyRate(3000, january)
	high := svc.CalculateNightlyRate(3000, july)

	if normal.Season != "normal" {
		t.Errorf("january season = %s, want normal", normal.Season)
	}
	if high.Season != "high" {
		t.Errorf("july season = %s, want high", high.Season)
	}

	// 3000 / 30 = 100; normal factor 1.0 -> 100, high factor 1.2 -> 120
	if normal.Recommended != 100 {
		t.Errorf("normal recommended = %d, want 100", normal.Recommended)
	}
	if high.Recommended != 120 {
		t.Errorf("high recommended = %d, want 120", high.Recommended)
	}
}

func TestCalculateNightlyRate_BandInvariants(t *testing.T) {
	svc := NewPricingService(testConfig())

	rents := []int64{1, 7, 100, 2999, 3000, 12345, 99999}
	months := []time.Month{time.January, time.April, time.July, time.September, time.December}

	for _, rent := range rents {
		for _, month := range months {
			checkIn := time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC)
			rate := svc.CalculateNightlyRate(rent, checkIn)

			if rate.MinLimit > rate.Recommended || rate.Recommended > rate.MaxLimit {
				t.Errorf("rent=%d month=%s: band violated min=%d rec=%d max=%d",
					rent, month, rate.MinLimit, rate.Recommended, rate.MaxLimit)
			}

			wantMin := int64(math.Floor(float64(rate.Recommended) * 0.8))
			wantMax := int64(math.Ceil(float64(rate.Recommended) * 1.3))
			if rate.MinLimit != wantMin {
				t.Errorf("rent=%d: min = %d, want %d", rent, rate.MinLimit, wantMin)
			}
			if rate.MaxLimit != wantMax {
				t.Errorf("rent=%d: max = %d, want %d", rent, rate.MaxLimit, wantMax)
			}
		}
	}
}

func TestCalculateNightlyRate_RoundsUp(t *testing.T) {
	svc := NewPricingService(testConfig())

	// 100 / 30 = 3.33..., normal factor keeps it fractional
	rate := svc.CalculateNightlyRate(100, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	if rate.Recommended != 4 {
		t.Errorf("recommended = %d, want 4 (ceil of 3.33)", rate.Recommended)
	}
}
