package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"

	"irisml/internal/config"
	"irisml/internal/data"
	"irisml/pkg/utils"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		utils.MustLogger("info", "").Fatal("Falha ao carregar configuração", zap.Error(err))
	}

	dataPath := flag.String("data", cfg.DataPath, "CSV a preparar (alterado no local)")
	seed := flag.Uint64("seed", data.DefaultLocationSeed, "Semente da coluna location")
	gen := flag.Bool("gen", false, "Gerar dataset sintético se o CSV não existir")
	perClass := flag.Int("per_class", 50, "Linhas por espécie no dataset sintético")
	flag.Parse()

	logger := utils.MustLogger(cfg.LogLevel, cfg.LogFile)
	defer logger.Sync()

	if _, err := os.Stat(*dataPath); errors.Is(err, os.ErrNotExist) && *gen {
		logger.Info("Gerando dataset sintético", zap.String("out", *dataPath), zap.Int("per_class", *perClass))
		if err := data.GenerateIrisCSV(*perClass, *seed, *dataPath); err != nil {
			logger.Fatal("Falha ao gerar dataset", zap.Error(err))
		}
	}

	added, err := data.AddLocation(*dataPath, *seed)
	if err != nil {
		logger.Fatal("Falha ao preparar dataset", zap.String("path", *dataPath), zap.Error(err))
	}
	if added {
		logger.Info("Coluna location adicionada", zap.String("path", *dataPath), zap.Uint64("seed", *seed))
	} else {
		logger.Info("Coluna location já existe; nada a fazer", zap.String("path", *dataPath))
	}

	t, err := data.ReadCSV(*dataPath)
	if err != nil {
		logger.Fatal("Falha ao ler CSV", zap.Error(err))
	}
	if err := data.Validate(t); err != nil {
		logger.Fatal("Dataset inválido", zap.Error(err))
	}
	s, err := data.Summarize(t)
	if err != nil {
		logger.Fatal("Falha ao resumir dataset", zap.Error(err))
	}
	for _, c := range s.ClassNames() {
		logger.Info("Classe", zap.String("species", c), zap.Int("rows", s.Classes[c]))
	}
	for _, f := range data.FeatureColumns {
		fs := s.Features[f]
		logger.Info("Feature",
			zap.String("name", f),
			zap.Float64("mean", fs.Mean),
			zap.Float64("std", fs.StdDev),
			zap.Float64("min", fs.Min),
			zap.Float64("max", fs.Max))
	}
	logger.Info("Dataset pronto", zap.Int("rows", s.Rows), zap.Strings("columns", t.Columns))
}
