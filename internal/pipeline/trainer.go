// Package pipeline runs the training and evaluation steps end to end.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"irisml/internal/artifacts"
	"irisml/internal/config"
	"irisml/internal/data"
	"irisml/internal/features"
	"irisml/internal/models"
	"irisml/internal/remote"
	"irisml/internal/split"
	"irisml/internal/tracking"
)

const (
	TrainingInfoTag   = "Training Info"
	TrainingInfoValue = "Decision tree model for IRIS data"
	ModelArtifactPath = "iris_model"
)

// Trainer fits the decision tree and publishes its artifacts. A nil
// Uploader or Tracker skips that step.
type Trainer struct {
	Config   *config.Config
	Uploader remote.Uploader
	Tracker  tracking.Tracker
	Logger   *zap.Logger

	// Split defaults to split.DefaultParams.
	Split *split.Params
}

type TrainResult struct {
	Bundle      *models.Bundle
	Accuracy    float64
	TrainRows   int
	TestRows    int
	Fingerprint uint64
	ModelPath   string
	EncoderPath string
	Uploaded    []string
	RunID       string
}

func (t *Trainer) Run(ctx context.Context) (*TrainResult, error) {
	log := t.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cfg := t.Config
	if cfg == nil {
		cfg = config.New()
	}
	sp := split.DefaultParams()
	if t.Split != nil {
		sp = *t.Split
	}

	start := time.Now()
	tbl, err := data.ReadCSV(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	log.Info("Dataset carregado", zap.String("path", cfg.DataPath), zap.Int("rows", tbl.Len()))

	s, err := sp.Apply(tbl)
	if err != nil {
		return nil, err
	}
	fp := s.Partition.Fingerprint()
	log.Info("Split estratificado",
		zap.Int("train", s.Train.Len()),
		zap.Int("test", s.Test.Len()),
		zap.Float64("held_out", sp.HeldOut),
		zap.Uint64("seed", sp.Seed),
		zap.Uint64("fingerprint", fp))

	featureNames := append([]string(nil), data.FeatureColumns...)
	Xtr, ytrLabels, err := xy(s.Train, featureNames, sp.StratifyBy)
	if err != nil {
		return nil, fmt.Errorf("train set: %w", err)
	}
	Xte, yteLabels, err := xy(s.Test, featureNames, sp.StratifyBy)
	if err != nil {
		return nil, fmt.Errorf("test set: %w", err)
	}

	enc := models.FitLabelEncoder(ytrLabels)
	ytr, err := enc.Transform(ytrLabels)
	if err != nil {
		return nil, err
	}
	yte, err := enc.Transform(yteLabels)
	if err != nil {
		return nil, err
	}

	tree := models.NewDecisionTree()
	if err := tree.Fit(Xtr, ytr); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	pte, err := tree.Predict(Xte)
	if err != nil {
		return nil, err
	}
	acc := models.Accuracy(yte, pte)
	log.Info("Modelo treinado",
		zap.String("model", tree.Name()),
		zap.Int("depth", tree.Depth()),
		zap.Int("leaves", tree.Leaves()),
		zap.Float64("accuracy", acc),
		zap.Duration("elapsed", time.Since(start)))

	bundle := models.NewBundle(tree, featureNames, enc)
	bundle.SplitFingerprint = fp

	store := artifacts.NewStore(cfg.ArtifactDir)
	modelPath, err := store.SaveModel(bundle)
	if err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	encPath, err := store.SaveEncoder(enc)
	if err != nil {
		return nil, fmt.Errorf("save encoder: %w", err)
	}
	log.Info("Artefatos salvos", zap.String("model", modelPath), zap.String("encoder", encPath))

	res := &TrainResult{
		Bundle:      bundle,
		Accuracy:    acc,
		TrainRows:   s.Train.Len(),
		TestRows:    s.Test.Len(),
		Fingerprint: fp,
		ModelPath:   modelPath,
		EncoderPath: encPath,
	}

	if t.Uploader != nil {
		loc, err := remote.ParseBucketURI(cfg.BucketURI)
		if err != nil {
			return nil, err
		}
		for _, p := range []string{modelPath, encPath} {
			key := remote.Key(cfg.ArtifactPrefix, filepath.Base(p))
			if err := t.Uploader.Upload(ctx, loc.Bucket, p, key); err != nil {
				return nil, fmt.Errorf("upload %s: %w", key, err)
			}
			log.Info("Artefato enviado", zap.String("bucket", loc.Bucket), zap.String("key", key))
			res.Uploaded = append(res.Uploaded, key)
		}
	}

	if t.Tracker != nil {
		runID, err := t.track(ctx, cfg, bundle, modelPath, acc, Xtr)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
		log.Info("Execução registrada",
			zap.String("run_id", runID),
			zap.String("endpoint", cfg.Endpoint.String()),
			zap.String("uri", cfg.ActiveTrackingURI()))
	}
	return res, nil
}

func (t *Trainer) track(ctx context.Context, cfg *config.Config, b *models.Bundle, modelPath string, acc float64, Xtr [][]float64) (id string, err error) {
	run, err := t.Tracker.StartRun(ctx, cfg.ExperimentName)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	defer func() {
		status := tracking.StatusFinished
		if err != nil {
			status = tracking.StatusFailed
		}
		err = multierr.Append(err, run.End(ctx, status))
		if err != nil {
			id = ""
		}
	}()

	if err := run.LogParams(ctx, b.Params); err != nil {
		return "", err
	}
	if err := run.LogMetric(ctx, "accuracy", acc); err != nil {
		return "", err
	}
	if err := run.SetTag(ctx, TrainingInfoTag, TrainingInfoValue); err != nil {
		return "", err
	}
	blob, err := os.ReadFile(modelPath)
	if err != nil {
		return "", err
	}
	err = run.LogModel(ctx, tracking.ModelLog{
		ArtifactPath:        ModelArtifactPath,
		Flavor:              "go-gob",
		ModelName:           b.Model.Name(),
		Blob:                blob,
		Signature:           tracking.InferSignature(b.Features, "string"),
		InputExample:        features.Example(b.Features, Xtr),
		RegisteredModelName: cfg.ActiveRegisteredModelName(),
	})
	if err != nil {
		return "", fmt.Errorf("log model: %w", err)
	}
	return run.ID(), nil
}

// xy projects t onto names and returns the matrix and the label column.
func xy(t *data.Table, names []string, label string) ([][]float64, []string, error) {
	sub, err := t.Project(names)
	if err != nil {
		return nil, nil, err
	}
	X, err := features.Matrix(sub)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.Column(label)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}
