package tracking

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"
)

// API paths served by the tracking server.
const (
	PathCreateRun = "/api/2.0/runs/create"
	PathLogBatch  = "/api/2.0/runs/log-batch"
	PathLogModel  = "/api/2.0/runs/log-model"
	PathUpdateRun = "/api/2.0/runs/update"
	PathGetRun    = "/api/2.0/runs/get"
)

type CreateRunRequest struct {
	ExperimentName string `json:"experiment_name" binding:"required"`
}

type CreateRunResponse struct {
	Run RunInfo `json:"run"`
}

type Metric struct {
	Key   string  `json:"key" binding:"required"`
	Value float64 `json:"value"`
}

type KeyValue struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value"`
}

type LogBatchRequest struct {
	RunID   string     `json:"run_id" binding:"required"`
	Params  []KeyValue `json:"params,omitempty" binding:"dive"`
	Metrics []Metric   `json:"metrics,omitempty" binding:"dive"`
	Tags    []KeyValue `json:"tags,omitempty" binding:"dive"`
}

type LogModelRequest struct {
	RunID string   `json:"run_id" binding:"required"`
	Model ModelLog `json:"model"`
}

type LogModelResponse struct {
	ModelVersion *ModelVersion `json:"model_version,omitempty"`
}

type UpdateRunRequest struct {
	RunID  string `json:"run_id" binding:"required"`
	Status Status `json:"status" binding:"required,oneof=RUNNING FINISHED FAILED"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Client talks to a remote tracking server.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

func (c *Client) StartRun(ctx context.Context, experiment string) (Run, error) {
	var resp CreateRunResponse
	if err := c.do(ctx, http.MethodPost, PathCreateRun, CreateRunRequest{ExperimentName: experiment}, &resp); err != nil {
		return nil, err
	}
	return &remoteRun{c: c, id: resp.Run.RunID}, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (*RunData, error) {
	var rd RunData
	path := PathGetRun + "?run_id=" + url.QueryEscape(runID)
	if err := c.do(ctx, http.MethodGet, path, nil, &rd); err != nil {
		return nil, err
	}
	return &rd, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrTransport, path, err)
	}
	if resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, PathGetRun) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, path)
	}
	if resp.StatusCode/100 != 2 {
		var e ErrorResponse
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s %s: %d %s", ErrTransport, method, path, resp.StatusCode, e.Error)
		}
		return fmt.Errorf("%w: %s %s: %d", ErrTransport, method, path, resp.StatusCode)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type remoteRun struct {
	c  *Client
	id string
}

func (r *remoteRun) ID() string { return r.id }

func (r *remoteRun) LogParams(ctx context.Context, params map[string]string) error {
	req := LogBatchRequest{RunID: r.id}
	for k, v := range params {
		req.Params = append(req.Params, KeyValue{Key: k, Value: v})
	}
	return r.c.do(ctx, http.MethodPost, PathLogBatch, req, nil)
}

func (r *remoteRun) LogMetric(ctx context.Context, key string, value float64) error {
	req := LogBatchRequest{RunID: r.id, Metrics: []Metric{{Key: key, Value: value}}}
	return r.c.do(ctx, http.MethodPost, PathLogBatch, req, nil)
}

func (r *remoteRun) SetTag(ctx context.Context, key, value string) error {
	req := LogBatchRequest{RunID: r.id, Tags: []KeyValue{{Key: key, Value: value}}}
	return r.c.do(ctx, http.MethodPost, PathLogBatch, req, nil)
}

func (r *remoteRun) LogModel(ctx context.Context, m ModelLog) error {
	return r.c.do(ctx, http.MethodPost, PathLogModel, LogModelRequest{RunID: r.id, Model: m}, &LogModelResponse{})
}

func (r *remoteRun) End(ctx context.Context, status Status) error {
	return r.c.do(ctx, http.MethodPost, PathUpdateRun, UpdateRunRequest{RunID: r.id, Status: status}, nil)
}
