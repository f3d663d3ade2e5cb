package tracking

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

const modelsDir = "models"

type experimentMeta struct {
	ExperimentID     string    `yaml:"experiment_id"`
	Name             string    `yaml:"name"`
	ArtifactLocation string    `yaml:"artifact_location"`
	CreationTime     time.Time `yaml:"creation_time"`
}

type mlModel struct {
	ArtifactPath    string                       `yaml:"artifact_path"`
	RunID           string                       `yaml:"run_id"`
	UTCTimeCreated  string                       `yaml:"utc_time_created"`
	Flavors         map[string]map[string]string `yaml:"flavors"`
	Signature       Signature                    `yaml:"signature"`
	ModelSizeBytes  int                          `yaml:"model_size_bytes"`
	InputExampleRef string                       `yaml:"saved_input_example,omitempty"`
}

// ModelVersion is one registration of a logged model under a name.
type ModelVersion struct {
	Name         string    `yaml:"name" json:"name"`
	Version      int       `yaml:"version" json:"version"`
	RunID        string    `yaml:"run_id" json:"run_id"`
	Source       string    `yaml:"source" json:"source"`
	CreationTime time.Time `yaml:"creation_time" json:"creation_time"`
}

// FileStore keeps runs under a directory tree:
//
//	<root>/<experiment id>/meta.yaml
//	<root>/<experiment id>/<run id>/{meta.yaml,params/,metrics/,tags/,artifacts/}
//	<root>/models/<name>/version-<n>/meta.yaml
type FileStore struct {
	Root string
	mu   sync.Mutex
	now  func() time.Time
}

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root, now: func() time.Time { return time.Now().UTC() }}
}

func (s *FileStore) StartRun(_ context.Context, experiment string) (Run, error) {
	info, err := s.CreateRun(experiment)
	if err != nil {
		return nil, err
	}
	return &fileRun{store: s, id: info.RunID}, nil
}

// CreateRun starts a run in the named experiment, creating the experiment
// on first use.
func (s *FileStore) CreateRun(experiment string) (RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, err := s.experiment(experiment)
	if err != nil {
		return RunInfo{}, err
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	dir := filepath.Join(s.Root, exp.ExperimentID, id)
	for _, sub := range []string{"params", "metrics", "tags", "artifacts"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return RunInfo{}, err
		}
	}
	info := RunInfo{
		RunID:        id,
		ExperimentID: exp.ExperimentID,
		Status:       StatusRunning,
		StartTime:    s.now(),
		ArtifactURI:  filepath.Join(dir, "artifacts"),
	}
	return info, writeYAML(filepath.Join(dir, "meta.yaml"), info)
}

func (s *FileStore) LogParam(runID, key, value string) error {
	return s.writeRunFile(runID, "params", key, []byte(value), false)
}

func (s *FileStore) LogMetric(runID, key string, value float64) error {
	line := fmt.Sprintf("%d %s 0\n", s.now().UnixMilli(), strconv.FormatFloat(value, 'g', -1, 64))
	return s.writeRunFile(runID, "metrics", key, []byte(line), true)
}

func (s *FileStore) SetTag(runID, key, value string) error {
	return s.writeRunFile(runID, "tags", key, []byte(value), false)
}

// LogModel stores the blob, its MLmodel description and, when a registered
// name is given, a new model version.
func (s *FileStore) LogModel(runID string, m ModelLog) (*ModelVersion, error) {
	if err := checkName(m.ArtifactPath); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	adir := filepath.Join(dir, "artifacts", m.ArtifactPath)
	if err := os.MkdirAll(adir, 0o755); err != nil {
		return nil, err
	}
	modelFile := m.ModelName
	if modelFile == "" {
		modelFile = "model.bin"
	}
	if err := checkName(modelFile); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(adir, modelFile), m.Blob, 0o644); err != nil {
		return nil, err
	}
	desc := mlModel{
		ArtifactPath:   m.ArtifactPath,
		RunID:          runID,
		UTCTimeCreated: s.now().Format("2006-01-02 15:04:05.000000"),
		Flavors:        map[string]map[string]string{m.Flavor: {"model_file": modelFile}},
		Signature:      m.Signature,
		ModelSizeBytes: len(m.Blob),
	}
	if len(m.InputExample) > 0 {
		buf, err := json.Marshal(m.InputExample)
		if err != nil {
			return nil, err
		}
		desc.InputExampleRef = "input_example.json"
		if err := os.WriteFile(filepath.Join(adir, desc.InputExampleRef), buf, 0o644); err != nil {
			return nil, err
		}
	}
	if err := writeYAML(filepath.Join(adir, "MLmodel"), desc); err != nil {
		return nil, err
	}
	if m.RegisteredModelName == "" {
		return nil, nil
	}
	return s.register(m.RegisteredModelName, runID, adir)
}

func (s *FileStore) EndRun(runID string, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	var info RunInfo
	if err := readYAML(filepath.Join(dir, "meta.yaml"), &info); err != nil {
		return err
	}
	end := s.now()
	info.Status = status
	info.EndTime = &end
	return writeYAML(filepath.Join(dir, "meta.yaml"), info)
}

func (s *FileStore) GetRun(runID string) (*RunData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	rd := &RunData{Params: map[string]string{}, Metrics: map[string]float64{}, Tags: map[string]string{}}
	if err := readYAML(filepath.Join(dir, "meta.yaml"), &rd.Info); err != nil {
		return nil, err
	}
	if err := readValues(filepath.Join(dir, "params"), func(k, v string) error { rd.Params[k] = v; return nil }); err != nil {
		return nil, err
	}
	if err := readValues(filepath.Join(dir, "tags"), func(k, v string) error { rd.Tags[k] = v; return nil }); err != nil {
		return nil, err
	}
	err = readValues(filepath.Join(dir, "metrics"), func(k, v string) error {
		f, err := lastMetric(v)
		if err != nil {
			return fmt.Errorf("metric %s: %w", k, err)
		}
		rd.Metrics[k] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	models, _ := filepath.Glob(filepath.Join(dir, "artifacts", "*", "MLmodel"))
	for _, m := range models {
		rd.Models = append(rd.Models, filepath.Base(filepath.Dir(m)))
	}
	sort.Strings(rd.Models)
	return rd, nil
}

// ModelVersions lists the registered versions of name, oldest first.
func (s *FileStore) ModelVersions(name string) ([]ModelVersion, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions(name)
}

func (s *FileStore) experiment(name string) (*experimentMeta, error) {
	if name == "" {
		return nil, errors.New("tracking: empty experiment name")
	}
	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, err
	}
	next := 0
	for _, e := range entries {
		if !e.IsDir() || e.Name() == modelsDir {
			continue
		}
		var meta experimentMeta
		if err := readYAML(filepath.Join(s.Root, e.Name(), "meta.yaml"), &meta); err != nil {
			continue
		}
		if meta.Name == name {
			return &meta, nil
		}
		if n, err := strconv.Atoi(meta.ExperimentID); err == nil && n >= next {
			next = n + 1
		}
	}
	meta := &experimentMeta{
		ExperimentID:     strconv.Itoa(next),
		Name:             name,
		ArtifactLocation: filepath.Join(s.Root, strconv.Itoa(next)),
		CreationTime:     s.now(),
	}
	if err := os.MkdirAll(meta.ArtifactLocation, 0o755); err != nil {
		return nil, err
	}
	return meta, writeYAML(filepath.Join(meta.ArtifactLocation, "meta.yaml"), meta)
}

func (s *FileStore) register(name, runID, source string) (*ModelVersion, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	existing, err := s.versions(name)
	if err != nil {
		return nil, err
	}
	mv := &ModelVersion{Name: name, Version: len(existing) + 1, RunID: runID, Source: source, CreationTime: s.now()}
	dir := filepath.Join(s.Root, modelsDir, name, fmt.Sprintf("version-%d", mv.Version))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return mv, writeYAML(filepath.Join(dir, "meta.yaml"), mv)
}

func (s *FileStore) versions(name string) ([]ModelVersion, error) {
	paths, err := filepath.Glob(filepath.Join(s.Root, modelsDir, name, "version-*", "meta.yaml"))
	if err != nil {
		return nil, err
	}
	out := make([]ModelVersion, 0, len(paths))
	for _, p := range paths {
		var mv ModelVersion
		if err := readYAML(p, &mv); err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (s *FileStore) runDir(runID string) (string, error) {
	if err := checkName(runID); err != nil {
		return "", err
	}
	matches, err := filepath.Glob(filepath.Join(s.Root, "*", runID, "meta.yaml"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return filepath.Dir(matches[0]), nil
}

func (s *FileStore) writeRunFile(runID, kind, key string, value []byte, appendTo bool) error {
	if err := checkName(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := s.runDir(runID)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, kind, key)
	if !appendTo {
		return os.WriteFile(path, value, 0o644)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(value); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// checkName rejects keys that would escape their directory or act as glob
// patterns.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\*?[]`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func readValues(dir string, fn func(k, v string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		buf, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		if err := fn(e.Name(), string(buf)); err != nil {
			return err
		}
	}
	return nil
}

// lastMetric parses the value of the last "<ts> <value> <step>" line.
func lastMetric(content string) (float64, error) {
	var last string
	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			last = l
		}
	}
	fields := strings.Fields(last)
	if len(fields) < 2 {
		return 0, fmt.Errorf("malformed metric line %q", last)
	}
	return strconv.ParseFloat(fields[1], 64)
}

func writeYAML(path string, v any) error {
	buf, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

func readYAML(path string, v any) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(buf, v)
}

type fileRun struct {
	store *FileStore
	id    string
}

func (r *fileRun) ID() string { return r.id }

func (r *fileRun) LogParams(_ context.Context, params map[string]string) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := r.store.LogParam(r.id, k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

func (r *fileRun) LogMetric(_ context.Context, key string, value float64) error {
	return r.store.LogMetric(r.id, key, value)
}

func (r *fileRun) SetTag(_ context.Context, key, value string) error {
	return r.store.SetTag(r.id, key, value)
}

func (r *fileRun) LogModel(_ context.Context, m ModelLog) error {
	_, err := r.store.LogModel(r.id, m)
	return err
}

func (r *fileRun) End(_ context.Context, status Status) error {
	return r.store.EndRun(r.id, status)
}
