package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"irisml/internal/artifacts"
	"irisml/internal/config"
	"irisml/internal/features"
	"irisml/internal/pipeline"
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
	noChart := flag.Bool("no_chart", false, "Não gerar o gráfico de métricas")
	flag.Parse()
	cfg.DataPath, cfg.ArtifactDir = *dataPath, *artifactDir

	logger := utils.MustLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	res, err := (&pipeline.Evaluator{Config: cfg, Logger: logger, NoChart: *noChart}).Run(ctx)
	switch {
	case errors.Is(err, artifacts.ErrArtifactNotFound):
		logger.Fatal("Modelo não encontrado; execute o treino antes", zap.Error(err))
	case errors.Is(err, features.ErrFeatureSchemaMismatch):
		logger.Fatal("Dataset incompatível com o modelo", zap.Error(err))
	case err != nil:
		logger.Fatal("Falha na avaliação", zap.Error(err))
	}
	logger.Info("Avaliação concluída",
		zap.Float64("accuracy", res.Metrics.Accuracy),
		zap.Float64("f1_score", res.Metrics.F1),
		zap.String("metrics", res.MetricsPath))
}
