package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/coursehub/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	genRequests *CounterVec
	genLatency  *HistogramVec
	genFallback *CounterVec
	cacheEvents *CounterVec

	sessionsCompleted *CounterVec
	progressGauge     *GaugeVec

	redisUp   *Gauge
	redisPing *Gauge
}

// New returns a metrics registry, or nil when disabled. Every method is safe
// on a nil *Metrics.
func New(enabled bool, log *logger.Logger) *Metrics {
	if !enabled {
		return nil
	}
	m := &Metrics{
		apiRequests: NewCounterVec("coursehub_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"coursehub_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("coursehub_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("coursehub_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("coursehub_api_requests_error_total", "Total API requests with 5xx status."),
		genRequests: NewCounterVec("coursehub_generation_requests_total", "Generation requests by action/source.", []string{"action", "source"}),
		genLatency: NewHistogramVec(
			"coursehub_generation_duration_seconds",
			"Generation latency in seconds by action/source.",
			[]string{"action", "source"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		),
		genFallback:       NewCounterVec("coursehub_generation_failures_total", "Remote generation failures by action/reason/policy.", []string{"action", "reason", "policy"}),
		cacheEvents:       NewCounterVec("coursehub_generation_cache_total", "Generation cache lookups and writes by result.", []string{"result"}),
		sessionsCompleted: NewCounterVec("coursehub_sessions_completed_total", "Session completions by course.", []string{"course"}),
		progressGauge:     NewGaugeVec("coursehub_course_progress_percent", "Current course progress percentage.", []string{"course"}),
		redisUp:           NewGauge("coursehub_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing:         NewGauge("coursehub_redis_ping_seconds", "Redis ping latency in seconds."),
	}
	if log != nil {
		log.Info("Observability metrics enabled")
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.genRequests, m.genLatency, m.genFallback, m.cacheEvents,
		m.sessionsCompleted, m.progressGauge,
		m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveGeneration records one resolved generation. source is remote, cache or fallback.
func (m *Metrics) ObserveGeneration(action, source string, dur time.Duration) {
	if m == nil {
		return
	}
	action = orUnknown(action)
	source = orUnknown(source)
	m.genRequests.Inc(action, source)
	if dur > 0 {
		m.genLatency.Observe(dur.Seconds(), action, source)
	}
}

// IncGenerationFailure counts a failed remote call whether it was masked by a
// fallback (policy=soft) or surfaced (policy=hard).
func (m *Metrics) IncGenerationFailure(action, reason, policy string) {
	if m == nil {
		return
	}
	m.genFallback.Inc(orUnknown(action), orUnknown(reason), orUnknown(policy))
}

func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.cacheEvents.Inc(orUnknown(result))
}

func (m *Metrics) ObserveSessionCompleted(courseID string, progress float64) {
	if m == nil {
		return
	}
	courseID = orUnknown(courseID)
	m.sessionsCompleted.Inc(courseID)
	m.progressGauge.Set(progress, courseID)
}

func (m *Metrics) SetCourseProgress(courseID string, progress float64) {
	if m == nil {
		return
	}
	m.progressGauge.Set(progress, orUnknown(courseID))
}

// StartRedisCollector pings rdb on every tick until ctx is done. The client is
// owned by the caller.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb *redis.Client, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil && ctx.Err() == nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func orUnknown(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "unknown"
	}
	return v
}

func isServerErrorStatus(status string) bool {
	status = strings.TrimSpace(status)
	if len(status) < 3 {
		return false
	}
	return status[0] == '5'
}
