// Command seed bootstraps the database with the operator record and an
// initial set of routes and trips. Run once after applying migrations.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/seatwave/whatsapp-booking-backend/internal/config"
	"github.com/seatwave/whatsapp-booking-backend/internal/database"
	"github.com/seatwave/whatsapp-booking-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	var (
		withSamples = flag.Bool("samples", false, "also create sample routes and trips")
		quota       = flag.Int("quota", 10, "seat quota for sample trips")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Operator.Phone == "" {
		logger.Fatal("OPERATOR_PHONE is required to seed the operator")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	operatorRepo := database.NewOperatorRepository(db)
	routeRepo := database.NewRouteRepository(db)
	tripRepo := database.NewTripRepository(db)

	phone, err := validator.NewPhoneValidator().Validate(cfg.Operator.Phone)
	if err != nil {
		logger.Fatalf("Invalid OPERATOR_PHONE: %v", err)
	}

	operator, err := operatorRepo.GetByPhone(phone)
	if err != nil {
		logger.Fatalf("Failed to look up operator: %v", err)
	}
	if operator == nil {
		operator, err = operatorRepo.Create(cfg.Operator.Name, phone)
		if err != nil {
			logger.Fatalf("Failed to create operator: %v", err)
		}
		logger.WithField("operator_id", operator.ID).Info("Operator created")
	} else {
		logger.WithField("operator_id", operator.ID).Info("Operator already exists")
	}

	if !*withSamples {
		return
	}

	samples := []struct {
		source, destination string
		price               float64
	}{
		{"Mumbai", "Pune", 450},
		{"Pune", "Mumbai", 450},
		{"Mumbai", "Nashik", 520},
	}

	tomorrow := time.Now().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	for _, s := range samples {
		route, err := routeRepo.Create(operator.ID, s.source, s.destination, s.price)
		if err != nil {
			logger.Fatalf("Failed to create route %s-%s: %v", s.source, s.destination, err)
		}
		for _, departure := range []string{"08:00", "18:30"} {
			if _, err := tripRepo.Create(route.ID, tomorrow, departure, *quota); err != nil {
				logger.Fatalf("Failed to create trip for route %s: %v", route.ID, err)
			}
		}
		logger.WithFields(logrus.Fields{
			"route": s.source + " -> " + s.destination,
			"trips": 2,
		}).Info("Sample route seeded")
	}
}
