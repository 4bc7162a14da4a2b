// Package main はAPIサーバーのエントリポイント。
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"crypto-audit-service/config"
	"crypto-audit-service/internal/cipher"
	"crypto-audit-service/internal/handler"
	"crypto-audit-service/internal/infra"
	"crypto-audit-service/internal/repository"
	"crypto-audit-service/internal/usecase"
)

func main() {
	ctx := context.Background()

	// .envファイルを読み込む（存在しない場合は無視）
	// 既存の環境変数は上書きしない
	_ = godotenv.Load()

	// 設定読み込み
	cfg := config.Load()

	// トレーサー初期化（ロガー設定の前に実行）
	tp, err := infra.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	if tp != nil {
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				slog.Error("failed to shutdown tracer", "error", err)
			}
		}()
	}

	// トレース情報付きロガーを設定
	infra.SetupLogger(cfg, infra.ParseLogLevel(cfg.LogLevel))

	// DB初期化（起動を待ってからテーブルを用意する）
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is not set")
		os.Exit(1)
	}
	slog.Info("waiting for database", "timeout", cfg.DBWaitTimeout, "poll_interval", cfg.DBPollInterval)
	db, err := infra.Acquire(ctx, cfg.DatabaseURL, cfg.DBWaitTimeout, cfg.DBPollInterval,
		infra.WithOpener(func(dsn string) (*gorm.DB, error) {
			return infra.NewDB(dsn, cfg.OtelEnabled)
		}),
		infra.WithModels(&repository.LogEntryModel{}),
	)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				slog.Error("failed to close database", "error", closeErr)
			}
		}
	}()

	// DI
	repo := repository.NewAuditRepository(db)
	cryptoService := usecase.NewCryptoService(cipher.NewEngine(), repo)
	auditService := usecase.NewAuditService(repo)
	router := handler.NewRouter(
		handler.NewCryptoHandler(cryptoService),
		handler.NewLogHandler(auditService),
		cfg,
	)

	// サーバー起動
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
