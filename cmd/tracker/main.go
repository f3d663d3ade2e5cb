package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"irisml/internal/config"
	"irisml/internal/server"
	"irisml/internal/tracking"
	"irisml/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		utils.MustLogger("info", "").Fatal("Falha ao carregar configuração", zap.Error(err))
	}
	addr := flag.String("addr", cfg.TrackerAddr, "Endereço de escuta")
	root := flag.String("root", cfg.TrackerRoot, "Diretório das execuções")
	flag.Parse()

	logger := utils.MustLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: *addr,
		Handler: server.New(tracking.NewFileStore(*root), server.Options{
			APIKey:   cfg.TrackingAPIKey,
			Logger:   logger,
			Registry: reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Servidor de tracking iniciado", zap.String("addr", *addr), zap.String("root", *root))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Falha no servidor", zap.Error(err))
	}
	logger.Info("Servidor encerrado")
}
