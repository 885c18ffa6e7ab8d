package adminweb

import (
	"strconv"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cb_subnet"

type metrics struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	requests *prometheus.CounterVec
}

func newMetrics(aw *AdminWeb) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Event records emitted, by event name.",
		}, []string{"event"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Admin web requests, by method, route and status code.",
		}, []string{"method", "path", "code"}),
	}

	m.registry.MustRegister(
		m.events,
		m.requests,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "networks",
			Help:      "Live subnets.",
		}, func() float64 { return float64(aw.manager.NetworkCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "users",
			Help:      "Registered users.",
		}, func() float64 { return float64(aw.manager.UserCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open websocket connections.",
		}, func() float64 { return float64(aw.pool.len()) }),
	)
	return m
}

func (m *metrics) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		code := c.Response().Status
		if err != nil {
			code, _ = statusOf(err)
		}
		m.requests.WithLabelValues(c.Request().Method, c.Path(), strconv.Itoa(code)).Inc()
		return err
	}
}
