package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/upmhealth/patient-records-api/pkg/logger"
	"github.com/upmhealth/patient-records-api/pkg/metrics"

	"github.com/upmhealth/patient-records-api/internal/config"
	"github.com/upmhealth/patient-records-api/internal/email"
	"github.com/upmhealth/patient-records-api/internal/handler"
	"github.com/upmhealth/patient-records-api/internal/repository/postgres"
	"github.com/upmhealth/patient-records-api/internal/router"
	auditsvc "github.com/upmhealth/patient-records-api/internal/service/audit"
	"github.com/upmhealth/patient-records-api/internal/service/auth"
	billingsvc "github.com/upmhealth/patient-records-api/internal/service/billing"
	insurancesvc "github.com/upmhealth/patient-records-api/internal/service/insurance"
	"github.com/upmhealth/patient-records-api/internal/service/patient"
	"github.com/upmhealth/patient-records-api/internal/service/person"
	"github.com/upmhealth/patient-records-api/internal/service/vitalsign"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Pretty)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, stats caching disabled")
			redisClient = nil
		}
	}

	m := metrics.NewMetrics("patient_records")

	base := postgres.NewBaseRepository(db, m)
	personRepo := postgres.NewPersonRepository(base)
	recordRepo := postgres.NewRecordRepository(base)
	vitalRepo := postgres.NewVitalSignRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	billingRepo := postgres.NewBillingRepository(base)
	insuranceRepo := postgres.NewInsuranceRepository(base)
	auditRepo := postgres.NewAuditRepository(base)

	authSvc, err := auth.NewService(cfg.Users)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build credential store")
	}

	emailSvc := email.NewService(cfg.SMTP)

	var submitter insurancesvc.Submitter
	switch cfg.Insurance.Mode {
	case "http":
		submitter = insurancesvc.NewHTTPSubmitter(cfg.Insurance.Timeout)
	default:
		submitter = insurancesvc.NewMockSubmitter(cfg.Insurance.MinLatency, cfg.Insurance.MaxLatency)
	}

	personSvc := person.NewService(personRepo)
	patientSvc := patient.NewService(personRepo, recordRepo, vitalRepo, prescriptionRepo)
	vitalSvc := vitalsign.NewService(personRepo, recordRepo, vitalRepo)
	billingSvc := billingsvc.NewService(recordRepo, vitalRepo, prescriptionRepo, billingRepo, insuranceRepo, m)
	insuranceSvc := insurancesvc.NewService(billingRepo, recordRepo, insuranceRepo, submitter, emailSvc, cfg.SMTP.From, m)
	auditSvc := auditsvc.NewService(auditRepo, personRepo, authSvc, redisClient, cfg.Audit.StatsCacheTTL, m)

	engine := router.New(cfg, authSvc, router.Handlers{
		Health:    handler.NewHealthHandler(db),
		Auth:      handler.NewAuthHandler(authSvc, auditSvc),
		Person:    handler.NewPersonHandler(personSvc),
		Patient:   handler.NewPatientHandler(patientSvc),
		Vitals:    handler.NewVitalsHandler(vitalSvc),
		Billing:   handler.NewBillingHandler(billingSvc, insuranceSvc),
		Insurance: handler.NewInsuranceHandler(insuranceSvc),
		Audit:     handler.NewAuditHandler(auditSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go runAuditCleanup(ctx, auditSvc, cfg.Audit)

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// runAuditCleanup enforces audit retention on a fixed interval until the
// process shuts down.
func runAuditCleanup(ctx context.Context, svc *auditsvc.Service, cfg config.AuditConfig) {
	if cfg.RetentionDays <= 0 {
		return
	}
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Cleanup(ctx, retention); err != nil {
				log.Error().Err(err).Msg("audit retention cleanup failed")
			}
		}
	}
}
