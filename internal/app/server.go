// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"duka-service/internal/config"
	"duka-service/internal/db"
	savingsdomain "duka-service/internal/domain/savings"
	opsHandler "duka-service/internal/handlers/ops"
	"duka-service/internal/middleware"
	"duka-service/internal/pkg/clock"
	"duka-service/internal/pkg/lock"
	"duka-service/internal/repository/postgres"
	"duka-service/internal/scheduler"
	remindersvc "duka-service/internal/service/reminder"
	savingssvc "duka-service/internal/service/savings"
	subscriptionsvc "duka-service/internal/service/subscription"
	writeoffsvc "duka-service/internal/service/writeoff"
	"duka-service/internal/sms"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	pool       *pgxpool.Pool
	cron       *cron.Cron
	dispatcher *sms.Dispatcher
	cancelSMS  context.CancelFunc
	http       *http.Server
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	loc, err := time.LoadLocation(s.cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.cfg.Timezone, err)
	}

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] connected")

	// ----- SMS dispatcher -----
	gateway := sms.NewGatewayClient(s.cfg.SMSGatewayURL, s.cfg.SMSGatewayKey, s.cfg.SMSSenderID)
	s.dispatcher = sms.NewDispatcher(gateway, s.cfg.SMSQueueSize, logger)

	smsCtx, cancelSMS := context.WithCancel(context.Background())
	s.cancelSMS = cancelSMS
	go s.dispatcher.Run(smsCtx)

	// ----- Repositories -----
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	savingsRepo := postgres.NewSavingsRepository(pool)
	salesRepo := postgres.NewSalesRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)

	// ----- Services -----
	subscriptionService := subscriptionsvc.NewService(subscriptionRepo, s.dispatcher, logger)
	savingsService := savingssvc.NewService(&savingsStore{savings: savingsRepo, sales: salesRepo}, logger)
	writeoffService := writeoffsvc.NewService(salesRepo, logger)
	reminderService := remindersvc.NewService(customerRepo, s.dispatcher, logger)

	// ----- Scheduler -----
	minDebt, err := decimal.NewFromString(s.cfg.MinDebt)
	if err != nil {
		return fmt.Errorf("invalid DEBT_REMINDER_MIN %q: %w", s.cfg.MinDebt, err)
	}

	locker := lock.NewLocker(redisClient, s.cfg.LockTTL)
	jobs := scheduler.New(
		subscriptionService,
		savingsService,
		writeoffService,
		reminderService,
		clock.System{},
		locker,
		scheduler.Config{
			Timeout:      s.cfg.JobTimeout,
			ReminderDays: s.cfg.ReminderDays,
			MinDebt:      minDebt,
		},
		logger,
	)

	s.cron = scheduler.NewCron(logger, loc)
	if err := jobs.Register(s.cron, s.cfg.CronSpecs); err != nil {
		return err
	}
	s.cron.Start()

	// ----- Handlers & Router -----
	opsHandlerInst := opsHandler.NewOpsHandler(jobs, logger)
	authMiddleware := middleware.NewAuthMiddleware(s.cfg.OpsJWTSecret)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	SetupRouter(s.engine, &Handlers{
		OpsHandler:     opsHandlerInst,
		AuthMiddleware: authMiddleware,
	})

	// ----- Start HTTP -----
	s.http = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	log.Printf("server running on %s", s.cfg.HTTPAddr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP listener, the cron runner, the SMS queue, and the
// database pool, in that order.
func (s *Server) Shutdown(ctx context.Context) {
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
	}
	if s.cron != nil {
		stopCtx := s.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	if s.cancelSMS != nil {
		s.cancelSMS()
		s.dispatcher.Wait()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// savingsStore stitches the savings and sales repositories into the single
// store the savings service expects.
type savingsStore struct {
	savings *postgres.SavingsRepository
	sales   *postgres.SalesRepository
}

func (s *savingsStore) ListEnabledSettings(ctx context.Context) ([]*savingsdomain.ShopSavingsSetting, error) {
	return s.savings.ListEnabledSettings(ctx)
}

func (s *savingsStore) SalesProfitSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error) {
	return s.sales.SalesProfitSum(ctx, shopID, from, to)
}

func (s *savingsStore) ExpenseSum(ctx context.Context, shopID int64, from, to time.Time) (decimal.Decimal, error) {
	return s.sales.ExpenseSum(ctx, shopID, from, to)
}

func (s *savingsStore) RecordDeposit(ctx context.Context, setting *savingsdomain.ShopSavingsSetting, txn *savingsdomain.SavingsTransaction) error {
	return s.savings.RecordDeposit(ctx, setting, txn)
}

func (s *savingsStore) RecordWithdrawal(ctx context.Context, setting *savingsdomain.ShopSavingsSetting, txn *savingsdomain.SavingsTransaction) error {
	return s.savings.RecordWithdrawal(ctx, setting, txn)
}
