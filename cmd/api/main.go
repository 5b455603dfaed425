package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	httpadp "loan-management/internal/adapter/http"
	mw "loan-management/internal/adapter/middleware"
	"loan-management/internal/adapter/repository/mysql"
	"loan-management/internal/config"
	"loan-management/internal/infrastructure/cache"
	"loan-management/internal/infrastructure/db"
	"loan-management/internal/infrastructure/logging"
	"loan-management/internal/usecase/account"
	"loan-management/internal/usecase/loan"
	"loan-management/pkg/id"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, err := db.Open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	if err := db.Migrate(gdb); err != nil {
		return err
	}
	if err := db.Seed(gdb); err != nil {
		return err
	}
	log.Info("database ready", zap.String("driver", cfg.DBDriver))

	// repositories + usecases
	users := mysql.NewUserRepository(gdb)
	tokens := mysql.NewTokenRepository(gdb)
	tx := mysql.NewGormUoW(gdb)
	accounts := account.NewUsecase(users, tokens, tx, log.Named("account"))
	loans := loan.NewUsecase(
		mysql.NewLoanRepository(gdb),
		mysql.NewStateRepository(gdb),
		users, tx, accounts.HasRole, log.Named("loan"),
	)

	checks := map[string]httpadp.Pinger{"db": sqlDB.PingContext}
	var idem echo.MiddlewareFunc
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		idem = mw.IdempotencyMiddleware(mw.IdempotencyConfig{
			Redis:   rdb,
			TTL:     time.Duration(cfg.IdempTTLSecs) * time.Second,
			Subject: callerSubject,
			Log:     log.Named("idempotency"),
		})
		log.Info("idempotency enabled", zap.String("redis", cfg.RedisAddr))
	} else {
		log.Warn("REDIS_ADDR empty, idempotency disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpadp.NewValidator()
	e.Use(
		middleware.Recover(),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}),
		middleware.RequestLoggerWithConfig(accessLog(log.Named("http"))),
	)

	httpadp.Routes{
		Health:      httpadp.NewHandler(checks),
		Loans:       httpadp.NewLoanHandler(loans, log.Named("loan")),
		Accounts:    httpadp.NewAccountHandler(accounts, log.Named("account")),
		Auth:        accounts,
		Idempotency: idem,
		Log:         log,
	}.Register(e)

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.AppPort
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// callerSubject scopes idempotency keys to the authenticated user.
func callerSubject(c echo.Context) string {
	if u := httpadp.CallerFrom(c); u != nil {
		return strconv.FormatUint(u.ID, 10)
	}
	return ""
}

func accessLog(log *zap.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}
}
