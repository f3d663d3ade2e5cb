package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"irisml/internal/config"
	"irisml/internal/data"
	"irisml/internal/pipeline"
	"irisml/internal/remote"
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

	dataPath := flag.String("data", cfg.DataPath, "CSV de entrada")
	artifactDir := flag.String("artifacts", cfg.ArtifactDir, "Diretório de artefatos")
	bucket := flag.String("bucket", cfg.BucketURI, "Bucket de destino (gs:// ou file://)")
	noUpload := flag.Bool("no_upload", false, "Não enviar artefatos ao bucket")
	noTrack := flag.Bool("no_track", false, "Não registrar a execução no tracking")
	flag.Parse()
	cfg.DataPath, cfg.ArtifactDir, cfg.BucketURI = *dataPath, *artifactDir, *bucket

	logger := utils.MustLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	trainer := &pipeline.Trainer{Config: cfg, Logger: logger}

	if !*noUpload {
		up, _, closeFn, err := remote.Open(ctx, cfg.BucketURI)
		if err != nil {
			logger.Fatal("Falha ao abrir bucket", zap.String("bucket", cfg.BucketURI), zap.Error(err))
		}
		defer closeFn()
		trainer.Uploader = up
	}
	if !*noTrack {
		tr, err := tracking.Open(cfg.Endpoint, cfg.ActiveTrackingURI(), logger)
		if err != nil {
			logger.Fatal("Falha ao abrir tracking", zap.Error(err))
		}
		if c, ok := tr.(*tracking.Client); ok {
			c.APIKey = cfg.TrackingAPIKey
		}
		trainer.Tracker = tr
	}

	res, err := trainer.Run(ctx)
	if err != nil {
		if errors.Is(err, data.ErrDataNotFound) {
			logger.Fatal("Dataset não encontrado", zap.String("path", cfg.DataPath), zap.Error(err))
		}
		logger.Fatal("Falha no treino", zap.Error(err))
	}
	logger.Info("Treino concluído",
		zap.Float64("accuracy", res.Accuracy),
		zap.String("model", res.ModelPath),
		zap.Strings("uploaded", res.Uploaded),
		zap.String("run_id", res.RunID))
}
