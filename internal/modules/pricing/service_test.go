package pricing

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

var padrao = FareProfile{BaseFare: 5, MinFare: 10, CostPerKm: 2, CostPerMin: 0.5}

func TestComputeFare(t *testing.T) {
	tests := []struct {
		name      string
		profile   FareProfile
		metrics   RouteMetrics
		wantTotal float64
		wantFloor bool
	}{
		{
			name:      "Above minimum (5 + 20 + 10)",
			profile:   padrao,
			metrics:   RouteMetrics{DistanceKm: 10, DurationMin: 20},
			wantTotal: 35,
		},
		{
			name:      "Zero route hits floor",
			profile:   padrao,
			metrics:   RouteMetrics{},
			wantTotal: 10,
			wantFloor: true,
		},
		{
			name:      "Premium tariff",
			profile:   FareProfile{BaseFare: 10, MinFare: 20, CostPerKm: 3, CostPerMin: 1},
			metrics:   RouteMetrics{DistanceKm: 4.2, DurationMin: 12.5},
			// 10 + 12.6 + 12.5 = 35.1
			wantTotal: 35.1,
		},
		{
			name:    "Rounding happens once at the end",
			profile: FareProfile{BaseFare: 0, MinFare: 0, CostPerKm: 1, CostPerMin: 1},
			// 0.004 + 0.004 = 0.008 -> 0.01; rounding each term first would give 0.00
			metrics:   RouteMetrics{DistanceKm: 0.004, DurationMin: 0.004},
			wantTotal: 0.01,
		},
		{
			name:      "Half-up at the cent boundary",
			profile:   FareProfile{BaseFare: 1.005},
			metrics:   RouteMetrics{},
			wantTotal: 1.01,
		},
		{
			name:      "Negative settings are accepted",
			profile:   FareProfile{BaseFare: -5, MinFare: -10, CostPerKm: 1, CostPerMin: 0},
			metrics:   RouteMetrics{DistanceKm: 2},
			wantTotal: -3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFare(tt.profile, tt.metrics)
			if err != nil {
				t.Fatalf("ComputeFare() error = %v", err)
			}
			if got.Total != tt.wantTotal {
				t.Errorf("ComputeFare() total = %v, want %v", got.Total, tt.wantTotal)
			}
			if got.Breakdown.FloorApplied != tt.wantFloor {
				t.Errorf("FloorApplied = %v, want %v", got.Breakdown.FloorApplied, tt.wantFloor)
			}
		})
	}
}

func TestComputeFare_NonFinite(t *testing.T) {
	cases := []struct {
		name    string
		profile FareProfile
		metrics RouteMetrics
	}{
		{"NaN base", FareProfile{BaseFare: math.NaN()}, RouteMetrics{}},
		{"Inf per km", FareProfile{CostPerKm: math.Inf(1)}, RouteMetrics{DistanceKm: 1}},
		{"NaN distance", padrao, RouteMetrics{DistanceKm: math.NaN()}},
		{"Overflowing product", FareProfile{CostPerKm: math.MaxFloat64}, RouteMetrics{DistanceKm: math.MaxFloat64}},
		{"Total overflows when rounded", FareProfile{BaseFare: 1e307}, RouteMetrics{}},
		{"Floor overflows when rounded", FareProfile{MinFare: 1e307}, RouteMetrics{DistanceKm: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ComputeFare(tc.profile, tc.metrics); !errors.Is(err, ErrComputation) {
				t.Fatalf("expected ErrComputation, got %v", err)
			}
		})
	}
}

// TestComputeFare_NeverBelowMinimum checks the floor over random non-negative inputs.
func TestComputeFare_NeverBelowMinimum(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		p := FareProfile{
			BaseFare:   rng.Float64() * 50,
			MinFare:    rng.Float64() * 100,
			CostPerKm:  rng.Float64() * 10,
			CostPerMin: rng.Float64() * 5,
		}
		m := RouteMetrics{DistanceKm: rng.Float64() * 80, DurationMin: rng.Float64() * 120}
		got, err := ComputeFare(p, m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Total < Round2(p.MinFare) {
			t.Fatalf("fare %v below minimum %v for %+v %+v", got.Total, p.MinFare, p, m)
		}
	}
}

func TestMetricsFromRoute(t *testing.T) {
	m := MetricsFromRoute(12345, 1510)
	if m.DistanceKm != 12.345 {
		t.Errorf("DistanceKm = %v, want 12.345", m.DistanceKm)
	}
	r := m.Rounded()
	if r.DistanceKm != 12.35 || r.DurationMin != 25.17 {
		t.Errorf("Rounded() = %+v, want {12.35 25.17}", r)
	}
}

func TestValidateSettings(t *testing.T) {
	got, err := ValidateSettings(SettingsInput{BaseFare: " 5 ", MinFare: "10", CostPerKm: "2", CostPerMin: "0.5"})
	if err != nil {
		t.Fatalf("ValidateSettings() error = %v", err)
	}
	if got != padrao {
		t.Errorf("ValidateSettings() = %+v, want %+v", got, padrao)
	}

	neg, err := ValidateSettings(SettingsInput{BaseFare: "-1", MinFare: "0", CostPerKm: "1e1", CostPerMin: "0"})
	if err != nil {
		t.Fatalf("negative/exponent input rejected: %v", err)
	}
	if neg.BaseFare != -1 || neg.CostPerKm != 10 {
		t.Errorf("unexpected parse %+v", neg)
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		in         SettingsInput
		wantFields []string
	}{
		{"Non numeric", SettingsInput{BaseFare: "abc", MinFare: "10", CostPerKm: "2", CostPerMin: "0.5"}, []string{"base_fare"}},
		{"Empty", SettingsInput{BaseFare: "5", MinFare: "", CostPerKm: "2", CostPerMin: "0.5"}, []string{"min_fare"}},
		{"NaN and Inf", SettingsInput{BaseFare: "5", MinFare: "10", CostPerKm: "NaN", CostPerMin: "+Inf"}, []string{"cost_per_km", "cost_per_min"}},
		{"All blank", SettingsInput{}, []string{"base_fare", "min_fare", "cost_per_km", "cost_per_min"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateSettings(tc.in)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("expected ErrInvalidSettings, got %v", err)
			}
			var ise *InvalidSettingsError
			if !errors.As(err, &ise) {
				t.Fatalf("expected *InvalidSettingsError, got %T", err)
			}
			if len(ise.Fields) != len(tc.wantFields) {
				t.Fatalf("fields = %v, want %v", ise.Fields, tc.wantFields)
			}
			for i := range tc.wantFields {
				if ise.Fields[i] != tc.wantFields[i] {
					t.Errorf("fields = %v, want %v", ise.Fields, tc.wantFields)
				}
			}
		})
	}
}

func TestInputFromProfile_RoundTrips(t *testing.T) {
	in := InputFromProfile(padrao)
	if in.CostPerMin != "0.5" {
		t.Errorf("CostPerMin = %q, want 0.5", in.CostPerMin)
	}
	back, err := ValidateSettings(in)
	if err != nil || back != padrao {
		t.Errorf("round trip = %+v, %v", back, err)
	}
}
