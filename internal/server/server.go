// Package server exposes a tracking FileStore over HTTP for remote
// training runs.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"irisml/internal/tracking"
)

type Options struct {
	// APIKey guards the tracking API when set; /health and /metrics stay open.
	APIKey   string
	Logger   *zap.Logger
	Registry *prometheus.Registry
}

type Server struct {
	store   *tracking.FileStore
	log     *zap.Logger
	apiKey  string
	metrics *metrics
}

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	runsCreated   prometheus.Counter
	runsFinished  *prometheus.CounterVec
	modelsLogged  prometheus.Counter
	modelVersions prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		runsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "runs_created_total",
			Help: "Runs created.",
		}),
		runsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "runs_ended_total",
			Help: "Runs ended by final status.",
		}, []string{"status"}),
		modelsLogged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "models_logged_total",
			Help: "Model artifacts logged.",
		}),
		modelVersions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "iris", Subsystem: "tracker", Name: "model_versions_total",
			Help: "Registered model versions created.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.runsCreated, m.runsFinished, m.modelsLogged, m.modelVersions)
	return m
}

// New builds the gin engine serving store.
func New(store *tracking.FileStore, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{store: store, log: opts.Logger, apiKey: opts.APIKey, metrics: newMetrics(opts.Registry)}

	r := gin.New()
	r.Use(gin.Recovery(), s.instrument)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/")
	api.Use(s.apiKeyMiddleware)
	api.POST(tracking.PathCreateRun, s.createRun)
	api.POST(tracking.PathLogBatch, s.logBatch)
	api.POST(tracking.PathLogModel, s.logModel)
	api.POST(tracking.PathUpdateRun, s.updateRun)
	api.GET(tracking.PathGetRun, s.getRun)
	api.GET("/api/2.0/registered-models/versions", s.modelVersions)
	return r
}

func (s *Server) instrument(c *gin.Context) {
	start := time.Now()
	c.Next()
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	s.metrics.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	s.metrics.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

func (s *Server) apiKeyMiddleware(c *gin.Context) {
	if s.apiKey == "" {
		c.Next()
		return
	}
	if c.GetHeader("X-API-Key") != s.apiKey {
		c.AbortWithStatusJSON(http.StatusUnauthorized, tracking.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) createRun(c *gin.Context) {
	var req tracking.CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	info, err := s.store.CreateRun(req.ExperimentName)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.runsCreated.Inc()
	s.log.Info("Execução criada", zap.String("run_id", info.RunID), zap.String("experiment", req.ExperimentName))
	c.JSON(http.StatusOK, tracking.CreateRunResponse{Run: info})
}

func (s *Server) logBatch(c *gin.Context) {
	var req tracking.LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	for _, p := range req.Params {
		if err := s.store.LogParam(req.RunID, p.Key, p.Value); err != nil {
			s.fail(c, err)
			return
		}
	}
	for _, m := range req.Metrics {
		if err := s.store.LogMetric(req.RunID, m.Key, m.Value); err != nil {
			s.fail(c, err)
			return
		}
	}
	for _, t := range req.Tags {
		if err := s.store.SetTag(req.RunID, t.Key, t.Value); err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) logModel(c *gin.Context) {
	var req tracking.LogModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	mv, err := s.store.LogModel(req.RunID, req.Model)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.modelsLogged.Inc()
	if mv != nil {
		s.metrics.modelVersions.Inc()
		s.log.Info("Modelo registrado", zap.String("name", mv.Name), zap.Int("version", mv.Version), zap.String("run_id", req.RunID))
	}
	c.JSON(http.StatusOK, tracking.LogModelResponse{ModelVersion: mv})
}

func (s *Server) updateRun(c *gin.Context) {
	var req tracking.UpdateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.store.EndRun(req.RunID, req.Status); err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.runsFinished.WithLabelValues(string(req.Status)).Inc()
	c.JSON(http.StatusOK, gin.H{})
}

func (s *Server) getRun(c *gin.Context) {
	id := c.Query("run_id")
	if id == "" {
		badRequest(c, errors.New("run_id is required"))
		return
	}
	rd, err := s.store.GetRun(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rd)
}

func (s *Server) modelVersions(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		badRequest(c, errors.New("name is required"))
		return
	}
	vs, err := s.store.ModelVersions(name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"model_versions": vs})
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, tracking.ErrorResponse{Error: err.Error()})
}

func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tracking.ErrRunNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, tracking.ErrorResponse{Error: err.Error()})
	case errors.Is(err, tracking.ErrInvalidName):
		badRequest(c, err)
	default:
		s.log.Error("Falha no tracking", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, tracking.ErrorResponse{Error: "internal error"})
	}
}
