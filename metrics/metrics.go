package metrics

import (
	"context"
	"errors"
	"memo-store/models"
	"memo-store/storage"
	"memo-store/validator"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results used as the result label
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultError    = "error"
)

// Collector owns a private registry with store and HTTP metrics
type Collector struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	requests   *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: registry,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memo_store_operations_total",
			Help: "Memo store operations by operation and result.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "memo_store_operation_duration_seconds",
			Help:    "Latency of memo store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	registry.MustRegister(c.operations, c.duration, c.requests)

	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// HTTPMiddleware counts requests by their route pattern, not the raw path,
// so memo ids do not explode label cardinality
func (c *Collector) HTTPMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		c.requests.WithLabelValues(ctx.Method(), ctx.Route().Path, strconv.Itoa(status)).Inc()

		return err
	}
}

// Instrument wraps a store so every call is counted and timed
func (c *Collector) Instrument(next storage.Store) storage.Store {
	return &instrumentedStore{next: next, c: c}
}

func (c *Collector) observe(op string, start time.Time, err error) {
	c.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	c.operations.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, storage.ErrNotFound):
		return ResultNotFound
	case errors.As(err, &verrs):
		return ResultInvalid
	default:
		return ResultError
	}
}

type instrumentedStore struct {
	next storage.Store
	c    *Collector
}

func (s *instrumentedStore) Create(ctx context.Context, text string) (*models.Memo, error) {
	start := time.Now()
	memo, err := s.next.Create(ctx, text)
	s.c.observe("create", start, err)
	return memo, err
}

func (s *instrumentedStore) FindByID(ctx context.Context, id int64) (*models.Memo, error) {
	start := time.Now()
	memo, err := s.next.FindByID(ctx, id)
	if err == nil && memo == nil {
		s.c.duration.WithLabelValues("find").Observe(time.Since(start).Seconds())
		s.c.operations.WithLabelValues("find", ResultNotFound).Inc()
		return nil, nil
	}
	s.c.observe("find", start, err)
	return memo, err
}

func (s *instrumentedStore) Update(ctx context.Context, id int64, text string) (*models.Memo, error) {
	start := time.Now()
	memo, err := s.next.Update(ctx, id, text)
	s.c.observe("update", start, err)
	return memo, err
}

func (s *instrumentedStore) DeleteByID(ctx context.Context, id int64) error {
	start := time.Now()
	err := s.next.DeleteByID(ctx, id)
	s.c.observe("delete", start, err)
	return err
}

func (s *instrumentedStore) Page(ctx context.Context, req models.PageRequest) (*models.Page, error) {
	start := time.Now()
	page, err := s.next.Page(ctx, req)
	s.c.observe("page", start, err)
	return page, err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return storage.Ping(ctx, s.next)
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}
