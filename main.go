package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/farm-dashboard/internal/auth"
	"github.com/example/farm-dashboard/internal/config"
	"github.com/example/farm-dashboard/internal/handlers"
	"github.com/example/farm-dashboard/internal/logging"
	"github.com/example/farm-dashboard/internal/repository"
	"github.com/example/farm-dashboard/internal/scheduler"
	"github.com/example/farm-dashboard/internal/usecase"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "farm-dashboard",
	Short:         "Farm visitor dashboard service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard as an xlsx report",
	Long: `Build the dashboard with administrator visibility and save it as an
xlsx workbook with one sheet per chart.`,
	RunE: runExport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to a .env file (default: ./.env when present)")
	exportCmd.Flags().String("farm-id", "all", "Farm to report on, or \"all\"")
	exportCmd.Flags().StringP("output", "o", "", "Output path (default: dashboard-<date>.xlsx)")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the dependencies shared by every command.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	db      *gorm.DB
	repo    *repository.DashboardRepository
	redis   *redis.Client
	usecase *usecase.DashboardUseCase
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := initDatabase(ctx, cfg.Database, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	repo := repository.NewDashboardRepository(db, logger)

	a := &app{cfg: cfg, logger: logger, db: db, repo: repo}

	var cache usecase.Cache
	if cfg.Redis.Addr != "" {
		redisCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		a.redis = initRedis(redisCtx, cfg.Redis.Addr, logger)
		cancel()
		cache = usecase.NewRedisCache(a.redis)
	} else {
		logger.Info("REDIS_ADDR not set, dashboard cache disabled")
	}

	a.usecase = usecase.NewDashboardUseCase(repo, cache, logger, usecase.WithCacheTTL(cfg.Dashboard.CacheTTL))
	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	a, err := newApp(ctx)
	cancel()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Dashboard.WarmSchedule != "" && a.cfg.Dashboard.CacheTTL > 0 && a.redis != nil {
		sched := scheduler.NewScheduler(a.cfg.Dashboard.WarmSchedule, a.usecase, a.logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(a.logger)
	authMiddleware := auth.RequireAuth(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTAudience, a.repo)
	handlers.RegisterRoutes(r, a.usecase, a.repo, authMiddleware, a.logger)

	server := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info("dashboard API listening", zap.String("addr", a.cfg.Server.Addr))
	return serveHTTPServer(server, a.cfg.Server.ShutdownTimeout, a.logger)
}

func runExport(cmd *cobra.Command, args []string) error {
	farmID, _ := cmd.Flags().GetString("farm-id")
	output, _ := cmd.Flags().GetString("output")

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if output == "" {
		output = fmt.Sprintf("dashboard-%s.xlsx", time.Now().Format("2006-01-02"))
	}

	req := usecase.Request{RequestID: "cli-export", UserID: "cli", IsAdmin: true, FarmID: farmID}
	f, err := a.usecase.ExportWorkbook(cmd.Context(), req)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(output); err != nil {
		return fmt.Errorf("save report %s: %w", output, err)
	}
	a.logger.Info("dashboard report written", zap.String("path", output), zap.String("farm_id", farmID))
	return nil
}

func initDatabase(ctx context.Context, cfg config.DatabaseConfig, zapLogger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel))})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access db handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}
	zapLogger.Info("database connected", zap.Int("max_open_conns", cfg.MaxOpenConns))
	return db, nil
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// initRedis connects the cache. An unreachable server is logged and the
// client is kept, since cache failures never fail a request.
func initRedis(ctx context.Context, addr string, zapLogger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		zapLogger.Warn("redis ping failed, continuing without a warm cache", zap.String("addr", addr), zap.Error(err))
	}
	return client
}
