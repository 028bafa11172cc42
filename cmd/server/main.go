// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"riskguard/internal/analytics"
	analyticshandler "riskguard/internal/analytics/handler"
	"riskguard/internal/assessment"
	assessmenthandler "riskguard/internal/assessment/handler"
	assessmentmetrics "riskguard/internal/assessment/metrics"
	"riskguard/internal/audit"
	audithandler "riskguard/internal/audit/handler"
	"riskguard/internal/customer"
	customerhandler "riskguard/internal/customer/handler"
	"riskguard/internal/platform/config"
	"riskguard/internal/platform/httpserver"
	"riskguard/internal/platform/logger"
	"riskguard/internal/platform/postgres"
	platformredis "riskguard/internal/platform/redis"
	"riskguard/internal/policy"
	policyhandler "riskguard/internal/policy/handler"
	"riskguard/internal/premium"
	premiumhandler "riskguard/internal/premium/handler"
	httptransport "riskguard/internal/transport/http"
	"riskguard/internal/underwriting"
	underwritinghandler "riskguard/internal/underwriting/handler"
	underwritingmetrics "riskguard/internal/underwriting/metrics"
	id "riskguard/pkg/domain"
)

// policyStore is the union of the policy ports consumed across modules.
type policyStore interface {
	Create(ctx context.Context, p *policy.Policy) error
	Delete(ctx context.Context, policyID id.PolicyID) error
	FindByID(ctx context.Context, policyID id.PolicyID) (*policy.Policy, error)
	Exists(ctx context.Context, policyID id.PolicyID) (bool, error)
	List(ctx context.Context) ([]policy.Policy, error)
	ListByCustomer(ctx context.Context, customerID id.CustomerID) ([]policy.Policy, error)
	Count(ctx context.Context) (int, error)
}

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Stores: postgres when configured, in-memory otherwise.
	var (
		customerStore   customer.Store
		assessmentStore assessment.Store
		decisionStore   underwriting.Store
		policies        policyStore
		paymentStore    premium.PaymentStore
		auditStore      audit.Store
	)
	if pool != nil {
		customerStore = customer.NewPostgresStore(pool)
		assessmentStore = assessment.NewPostgresStore(pool)
		decisionStore = underwriting.NewPostgresStore(pool)
		policies = policy.NewPostgresStore(pool)
		paymentStore = premium.NewPostgresPaymentStore(pool)
		auditStore = audit.NewPostgresStore(pool)
	} else {
		customerStore = customer.NewInMemoryStore()
		assessmentStore = assessment.NewInMemoryStore()
		decisionStore = underwriting.NewInMemoryStore()
		policies = policy.NewInMemoryStore()
		paymentStore = premium.NewInMemoryPaymentStore()
		auditStore = audit.NewInMemoryStore()
	}

	var auditSinks []audit.Emitter
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		auditSinks = append(auditSinks, kafka)
	}
	auditor := audit.NewPublisher(auditStore, log, auditSinks...)

	pricing := premium.NewStandardCalculator()

	customerService := customer.New(customerStore,
		customer.WithLogger(log),
		customer.WithAuditEmitter(auditor),
	)
	assessmentService := assessment.New(customerStore, assessmentStore,
		assessment.WithLogger(log),
		assessment.WithAuditEmitter(auditor),
		assessment.WithMetrics(assessmentmetrics.New()),
	)
	workflow := underwriting.New(assessmentStore, decisionStore, policies, pricing,
		underwriting.WithLogger(log),
		underwriting.WithAuditEmitter(auditor),
		underwriting.WithMetrics(underwritingmetrics.New()),
		underwriting.WithReopenFromHold(cfg.AllowReopenFromHold),
		underwriting.WithTimeouts(cfg.StoreTimeout, cfg.PricingTimeout),
	)
	policyService := policy.NewService(policies)
	paymentService := premium.NewPaymentService(paymentStore, policies,
		premium.WithPaymentLogger(log),
		premium.WithPaymentAuditEmitter(auditor),
	)

	analyticsOpts := []analytics.Option{analytics.WithLogger(log)}
	if redisClient != nil {
		analyticsOpts = append(analyticsOpts,
			analytics.WithCache(analytics.NewRedisCache(redisClient), cfg.ReportCacheTTL))
	}
	analyticsService := analytics.New(assessmentStore, decisionStore, policies, analyticsOpts...)

	var healthChecks []httptransport.HealthChecker
	if redisClient != nil {
		healthChecks = append(healthChecks, redisClient)
	}

	router := httptransport.NewRouter(log, httptransport.Handlers{
		Customer:     customerhandler.New(customerService, log),
		Assessment:   assessmenthandler.New(assessmentService, workflow, log),
		Underwriting: underwritinghandler.New(workflow, log),
		Policy:       policyhandler.New(policyService),
		Premium:      premiumhandler.New(pricing, paymentService, log),
		Audit:        audithandler.New(auditor),
		Analytics:    analyticshandler.New(analyticsService),
	}, healthChecks...)

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting riskguard", "addr", cfg.Addr, "postgres", pool != nil, "redis", redisClient != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
