package pipeline

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"irisml/internal/artifacts"
	"irisml/internal/config"
	"irisml/internal/data"
	"irisml/internal/features"
	"irisml/internal/models"
	"irisml/internal/report"
	"irisml/internal/split"
)

var ErrEncoderMismatch = errors.New("label encoder does not match the model")

// Evaluator scores the persisted model on the rebuilt holdout rows.
type Evaluator struct {
	Config *config.Config
	Logger *zap.Logger

	// Split defaults to split.DefaultParams and must match the Trainer's.
	Split *split.Params
	// NoChart skips the metrics chart.
	NoChart bool
}

type ClassReport struct {
	Class     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

type EvalResult struct {
	Metrics     artifacts.Metrics
	Resolution  features.Kind
	Features    []string
	TestRows    int
	Fingerprint uint64
	PerClass    []ClassReport
	// Confusion[i][j] counts rows of class i predicted as class j.
	Confusion   [][]int
	MetricsPath string
	ChartPath   string
}

func (e *Evaluator) Run(ctx context.Context) (*EvalResult, error) {
	log := e.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := e.Config
	if cfg == nil {
		cfg = config.New()
	}
	sp := split.DefaultParams()
	if e.Split != nil {
		sp = *e.Split
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tbl, err := data.ReadCSV(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	store := artifacts.NewStore(cfg.ArtifactDir)
	if !store.Exists(artifacts.ModelFile, artifacts.EncoderFile) {
		return nil, fmt.Errorf("%w: %s must hold %s and %s", artifacts.ErrArtifactNotFound, store.Dir, artifacts.ModelFile, artifacts.EncoderFile)
	}
	bundle, err := store.LoadModel()
	if err != nil {
		return nil, err
	}
	enc, err := store.LoadEncoder()
	if err != nil {
		return nil, err
	}
	if !slices.Equal(enc.Classes, bundle.Classes) {
		return nil, fmt.Errorf("%w: encoder classes %v, model classes %v", ErrEncoderMismatch, enc.Classes, bundle.Classes)
	}
	log.Info("Modelo carregado",
		zap.String("path", store.Path(artifacts.ModelFile)),
		zap.Strings("features", bundle.FeatureNames()),
		zap.Strings("classes", enc.Classes))

	res, err := features.Resolve(bundle, tbl)
	if err != nil {
		return nil, err
	}
	if w := res.Warning(); w != "" {
		log.Warn("Resolução de features aproximada", zap.String("warning", w), zap.Strings("columns", res.Columns))
	}

	s, err := sp.Apply(tbl)
	if err != nil {
		return nil, err
	}
	fp := s.Partition.Fingerprint()
	if bundle.SplitFingerprint != 0 && bundle.SplitFingerprint != fp {
		return nil, fmt.Errorf("%w: trained on %x, rebuilt %x", split.ErrSplitMismatch, bundle.SplitFingerprint, fp)
	}

	// The resolved projection keeps source row order; select the test rows.
	Xte, err := features.Matrix(res.Table.Select(s.Partition.Test))
	if err != nil {
		return nil, err
	}
	labels, err := s.Test.Column(sp.StratifyBy)
	if err != nil {
		return nil, err
	}
	y, err := enc.Transform(labels)
	if err != nil {
		return nil, err
	}
	predicted, err := bundle.Predict(Xte)
	if err != nil {
		return nil, err
	}
	p, err := enc.Transform(predicted)
	if err != nil {
		return nil, err
	}

	prec, rec, f1 := models.Macro(y, p)
	m := artifacts.Metrics{
		Accuracy:  models.Accuracy(y, p),
		Precision: prec,
		Recall:    rec,
		F1:        f1,
	}
	path, err := store.SaveMetrics(m)
	if err != nil {
		return nil, fmt.Errorf("save metrics: %w", err)
	}
	out := &EvalResult{
		Metrics:     m.Rounded(),
		Resolution:  res.Kind,
		Features:    res.Columns,
		TestRows:    len(y),
		Fingerprint: fp,
		MetricsPath: path,
	}
	log.Info("Métricas de avaliação",
		zap.String("resolution", res.Kind.String()),
		zap.Float64("accuracy", out.Metrics.Accuracy),
		zap.Float64("precision", out.Metrics.Precision),
		zap.Float64("recall", out.Metrics.Recall),
		zap.Float64("f1_score", out.Metrics.F1),
		zap.String("path", path))

	for _, cs := range models.PerClass(y, p) {
		name := fmt.Sprint(cs.Class)
		if cs.Class >= 0 && cs.Class < len(enc.Classes) {
			name = enc.Classes[cs.Class]
		}
		cr := ClassReport{Class: name, Precision: cs.Precision, Recall: cs.Recall, F1: cs.F1, Support: cs.Support}
		out.PerClass = append(out.PerClass, cr)
		log.Info("Classe",
			zap.String("class", cr.Class),
			zap.Float64("precision", cr.Precision),
			zap.Float64("recall", cr.Recall),
			zap.Float64("f1", cr.F1),
			zap.Int("support", cr.Support))
	}

	out.Confusion = models.Confusion(y, p, len(enc.Classes))
	for k, row := range out.Confusion {
		log.Info("Matriz de confusão", zap.String("class", enc.Classes[k]), zap.Ints("predicted", row))
	}

	if !e.NoChart {
		chart := store.Path(artifacts.ChartFile)
		bars := []report.Bar{
			{Name: "accuracy", Value: m.Accuracy},
			{Name: "precision", Value: m.Precision},
			{Name: "recall", Value: m.Recall},
			{Name: "f1_score", Value: m.F1},
		}
		if err := report.PlotScores(chart, "Métricas de avaliação", bars); err != nil {
			log.Warn("Falha ao gerar gráfico", zap.Error(err))
		} else {
			out.ChartPath = chart
		}
	}
	return out, nil
}
