// Package journey logs trips and estimates their carbon emissions.
package journey

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ecoplus-hub/ecoplus/internal/domain"
	"github.com/ecoplus-hub/ecoplus/internal/infra/metrics"
	"github.com/ecoplus-hub/ecoplus/internal/infra/sqlite"
)

// Emission factors in kg CO2 per km.
var factors = map[domain.TransportType]float64{
	domain.TransportBicycle:  0,
	domain.TransportTrain:    0.041,
	domain.TransportBus:      0.089,
	domain.TransportElectric: 0.053,
}

const (
	// CarBaseline is the kg CO2/km a typical car emits; savings are
	// measured against it.
	CarBaseline = 0.21
	// kg CO2 per litre of petrol.
	petrolCO2 = 2.31
)

// Emissions estimates a trip's kg CO2, rounded to 2 decimals. Cars need
// fuelEfficiency in km per litre.
func Emissions(t domain.TransportType, distance float64, fuelEfficiency *float64) (float64, error) {
	if distance < 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return 0, domain.ErrInvalidDistance
	}
	if t == domain.TransportCar {
		if fuelEfficiency == nil || *fuelEfficiency <= 0 {
			return 0, domain.ErrFuelEfficiencyRequired
		}
		return round2(distance / *fuelEfficiency * petrolCO2), nil
	}
	f, ok := factors[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidTransport, t)
	}
	return round2(distance * f), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LogRequest describes a trip to record. A nil Emissions is computed.
type LogRequest struct {
	TransportType  domain.TransportType
	Distance       float64
	FuelEfficiency *float64
	Emissions      *float64
}

// Service records journeys and summarizes them.
type Service struct {
	db  *sqlite.DB
	now func() time.Time
}

// NewService creates a journey service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// Log validates and stores a journey for the user.
func (s *Service) Log(ctx context.Context, userID string, req LogRequest) (domain.Journey, error) {
	computed, err := Emissions(req.TransportType, req.Distance, req.FuelEfficiency)
	if err != nil {
		return domain.Journey{}, err
	}
	emissions := computed
	if req.Emissions != nil && *req.Emissions >= 0 {
		emissions = round2(*req.Emissions)
	}

	j := domain.Journey{
		ID:             uuid.NewString(),
		UserID:         userID,
		TransportType:  req.TransportType,
		Distance:       req.Distance,
		FuelEfficiency: req.FuelEfficiency,
		Emissions:      emissions,
		Date:           s.now(),
	}
	if err := s.db.InsertJourney(ctx, j); err != nil {
		return domain.Journey{}, fmt.Errorf("insert journey: %w", err)
	}
	metrics.JourneysLogged.WithLabelValues(string(j.TransportType)).Inc()
	return j, nil
}

// List returns the user's journeys, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domain.Journey, error) {
	list, err := s.db.ListJourneys(ctx, userID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []domain.Journey{}
	}
	return list, nil
}

// Stats returns total emissions and the total saved against driving
// every trip at CarBaseline. Savings may be negative.
func (s *Service) Stats(ctx context.Context, userID string) (domain.JourneyStats, error) {
	emissions, distance, err := s.db.JourneyTotals(ctx, userID)
	if err != nil {
		return domain.JourneyStats{}, fmt.Errorf("journey totals: %w", err)
	}
	return domain.JourneyStats{
		TotalEmissions: round2(emissions),
		TotalSaved:     round2(distance*CarBaseline - emissions),
	}, nil
}
