package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	autoservices "flowdesk/internal/application/automation/services"
	automationusecases "flowdesk/internal/application/automation/usecases"
	slaservices "flowdesk/internal/application/sla/services"
	slausecases "flowdesk/internal/application/sla/usecases"
	"flowdesk/internal/infrastructure/cache"
	"flowdesk/internal/infrastructure/config"
	"flowdesk/internal/infrastructure/database"
	"flowdesk/internal/infrastructure/email"
	"flowdesk/internal/infrastructure/lock"
	"flowdesk/internal/infrastructure/repository"
	"flowdesk/internal/infrastructure/scheduler"
	"flowdesk/internal/infrastructure/webhook"
	"flowdesk/internal/shared/biztime"
	"flowdesk/internal/shared/logger"
)

func main() {
	// Parse environment from command line or env variable
	env := "development"
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	// Load configuration
	cfg, err := config.Load(env)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger()
	log.Infow("starting escalation worker", "environment", env)

	// Business-hours arithmetic resolves wall-clock times in this zone.
	if err := biztime.Init(cfg.SLA.Timezone); err != nil {
		log.Errorw("failed to initialize business timezone", "error", err)
		os.Exit(1)
	}

	// Initialize database
	if err := database.Init(&cfg.Database); err != nil {
		log.Errorw("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Redis backs the ticket locks and idempotency keys when enabled so
	// multiple workers can share them. A single-process deployment falls
	// back to the in-memory implementations.
	var (
		ticketLock  automationusecases.TicketLocker
		idempotency autoservices.IdempotencyStore
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Errorw("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

		ticketLock = lock.NewRedisTicketLock(redisClient, 0, log)
		idempotency = cache.NewRedisIdempotencyStore(redisClient, cache.DefaultIdempotencyTTL)
	} else {
		ticketLock = lock.NewMemoryTicketLock()
		idempotency = cache.NewMemoryIdempotencyStore(cache.DefaultIdempotencyTTL)
	}

	// Initialize repositories
	gormDB := database.Get()
	ruleRepo := repository.NewRuleRepository(gormDB)
	calendarRepo := repository.NewCalendarRepository(gormDB)
	policyRepo := repository.NewPolicyRepository(gormDB)
	stateRepo := repository.NewSLAStateRepository(gormDB)
	agentDirectory := repository.NewAgentDirectory(gormDB)
	ticketRepo := repository.NewTicketRepository(gormDB)

	// Action side effects
	assignments := autoservices.NewAssignmentService(agentDirectory, log)
	notifier, err := email.NewSMTPNotifier(&cfg.SMTP, email.StaticAudienceResolver(cfg.SMTP.Audiences), log)
	if err != nil {
		log.Errorw("failed to initialize notifier", "error", err)
		os.Exit(1)
	}
	webhooks := webhook.NewSender(time.Duration(cfg.Automation.WebhookTimeoutSeconds)*time.Second, log)

	executor := autoservices.NewActionExecutor(
		assignments,
		ticketRepo,
		notifier,
		webhooks,
		idempotency,
		cfg.Automation.MaxActionRetries,
		time.Duration(cfg.Automation.ActionTimeoutSeconds)*time.Second,
		log,
	)

	// Rule engine and SLA wiring
	handleEvent := automationusecases.NewHandleTicketEventUseCase(ruleRepo, ticketLock, executor, log)
	gateway := slaservices.NewAutomationEventGateway(handleEvent)
	checkBreach := slausecases.NewCheckBreachUseCase(stateRepo, ticketRepo, gateway, log)
	processor := slaservices.NewEscalationProcessor(stateRepo, ticketRepo, gateway, executor, checkBreach, log)

	escScheduler := scheduler.NewEscalationScheduler(
		processor,
		calendarRepo,
		stateRepo,
		policyRepo,
		cfg.SLA.DispatchWorkers,
		log,
	)

	// Re-arm deadlines for every active state so a restart loses nothing.
	if err := escScheduler.Rebuild(context.Background()); err != nil {
		log.Errorw("failed to rebuild escalation deadlines", "error", err)
		os.Exit(1)
	}

	manager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Errorw("failed to create scheduler manager", "error", err)
		os.Exit(1)
	}
	tickInterval := time.Duration(cfg.SLA.TickIntervalSeconds) * time.Second
	if err := manager.RegisterEscalationJob(escScheduler, tickInterval); err != nil {
		log.Errorw("failed to register escalation job", "error", err)
		os.Exit(1)
	}
	// Nightly heal pass for the process-local deadline heap.
	if err := manager.RegisterMaintenanceJob("sla-deadline-rebuild", "0 3 * * *", scheduler.NewRebuildJob(escScheduler)); err != nil {
		log.Errorw("failed to register maintenance job", "error", err)
		os.Exit(1)
	}
	manager.Start()
	log.Infow("escalation worker started", "tick_interval", tickInterval.String())

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Infow("received signal, shutting down", "signal", sig)

	if err := manager.Stop(); err != nil {
		log.Errorw("scheduler shutdown failed", "error", err)
	}
	log.Infow("escalation worker stopped")
}
