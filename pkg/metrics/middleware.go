package metrics

// Request metrics middleware, after github.com/zsais/go-gin-prometheus,
// reduced to what the bridge serves: a gin middleware plus a /metrics
// endpoint on a separate listener.

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "ref"},
}

const defaultMetricPath = "/metrics"

// Prometheus records per-request metrics for a gin engine.
type Prometheus struct {
	reqCnt *prometheus.CounterVec
	reqDur *prometheus.HistogramVec
	resSz  *prometheus.SummaryVec

	MetricsPath string
	log         *zap.SugaredLogger
}

func NewPrometheus(reg prometheus.Registerer, log *zap.SugaredLogger) *Prometheus {
	p := &Prometheus{
		reqCnt:      NewMetric(reqCnt, "").(*prometheus.CounterVec),
		reqDur:      NewMetric(reqDur, "").(*prometheus.HistogramVec),
		resSz:       NewMetric(resSz, "").(*prometheus.SummaryVec),
		MetricsPath: defaultMetricPath,
		log:         log,
	}
	for _, c := range []prometheus.Collector{p.reqCnt, p.reqDur, p.resSz} {
		if err := reg.Register(c); err != nil {
			log.Errorw("metric_register_failed", "err", err)
		}
	}
	return p
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		url := c.FullPath()
		if url == "" {
			url = "unmatched"
		}
		ref := c.Request.Header.Get(RefererKey)

		p.reqDur.WithLabelValues(status, c.Request.Method, url, ref).Observe(MillisecondsSince(start))
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, ref).Inc()
		p.resSz.WithLabelValues(status, c.Request.Method, url, ref).Observe(float64(c.Writer.Size()))
	}
}

// Handler serves the gathered metrics.
func (p *Prometheus) Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(p.MetricsPath, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return mux
}

func MillisecondsSince(t time.Time) float64 {
	return float64(time.Since(t)) / float64(time.Millisecond)
}
