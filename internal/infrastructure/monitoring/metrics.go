package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/jwtauth/internal/domain/service"
)

var _ service.Metrics = (*Metrics)(nil)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	TokensIssued    prometheus.Counter
	TokenRejections *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	RateLimitHits   *prometheus.CounterVec
	DBQueryLatency  *prometheus.HistogramVec
	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	HTTPActive      prometheus.Gauge
	GRPCRequests    *prometheus.CounterVec
}

// NewMetrics creates the Prometheus metrics and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TokensIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "jwtauth_tokens_issued_total",
			Help: "Total number of bearer tokens issued.",
		}),
		TokenRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtauth_token_rejections_total",
			Help: "Total number of bearer tokens rejected, by failure kind.",
		}, []string{"reason"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtauth_login_attempts_total",
			Help: "Total number of login attempts, by result.",
		}, []string{"result"}),
		RateLimitHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtauth_rate_limit_hits_total",
			Help: "Total number of rate limit hits.",
		}, []string{"dimension"}),
		DBQueryLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jwtauth_db_query_duration_seconds",
			Help:    "Latency of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtauth_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jwtauth_http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jwtauth_http_active_requests",
			Help: "Number of HTTP requests in flight.",
		}),
		GRPCRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jwtauth_grpc_requests_total",
			Help: "Total number of gRPC requests.",
		}, []string{"method", "code"}),
	}
}

func (m *Metrics) RecordTokenIssued() {
	m.TokensIssued.Inc()
}

func (m *Metrics) RecordTokenRejection(reason string) {
	m.TokenRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordLoginAttempt(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRateLimitHit(dimension string) {
	m.RateLimitHits.WithLabelValues(dimension).Inc()
}

func (m *Metrics) RecordDBQuery(operation string, duration time.Duration) {
	m.DBQueryLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) ActiveRequestsInc() {
	m.HTTPActive.Inc()
}

func (m *Metrics) ActiveRequestsDec() {
	m.HTTPActive.Dec()
}

// ObserveRequest records a finished HTTP request. route is the matched route pattern.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveGRPCRequest records a finished unary call.
func (m *Metrics) ObserveGRPCRequest(method, code string) {
	m.GRPCRequests.WithLabelValues(method, code).Inc()
}
