package prom

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	xhttp "github.com/SoHOSolatube/PD-App-sub000/pkg/http"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/logger"
)

const (
	SystemDelivery   = "delivery"
	SystemDispatcher = "dispatcher"
	SystemSequencer  = "sequencer"
)

const (
	MetricDeliveryAttempts  = "attempts_total"
	MetricDeliveryDelivered = "delivered_total"
	MetricTickDuration      = "tick_duration_seconds"
	MetricMessagesFinal     = "messages_total"
	MetricStepsFired        = "steps_fired_total"
)

var createLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var counters = make(map[string]prometheus.Counter)
var counterVecs = make(map[string]*prometheus.CounterVec)
var histogramVecs = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers the delivery-pipeline metric set. host and env become
// const labels on every series.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace
	MetricSystemEnabled = true

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounterVec(SystemDelivery, MetricDeliveryAttempts, []string{"channel"}))
	hasError(createCounterVec(SystemDelivery, MetricDeliveryDelivered, []string{"channel"}))
	hasError(createHistogramVec(SystemDispatcher, MetricTickDuration, []string{"job"}))
	hasError(createCounterVec(SystemDispatcher, MetricMessagesFinal, []string{"status"}))
	hasError(createCounter(SystemSequencer, MetricStepsFired))

	return err
}

// ListenAndServer exposes the metrics endpoint on its own port.
func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func AddDeliveryAttempt(channel string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := counterVecs[SystemDelivery+MetricDeliveryAttempts]; ok {
		m.WithLabelValues(channel).Inc()
	}
}

func AddDeliveryDelivered(channel string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := counterVecs[SystemDelivery+MetricDeliveryDelivered]; ok {
		m.WithLabelValues(channel).Inc()
	}
}

func ObserveTickDuration(job string, seconds float64) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := histogramVecs[SystemDispatcher+MetricTickDuration]; ok {
		m.WithLabelValues(job).Observe(seconds)
	}
}

func AddMessageFinal(status string) {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := counterVecs[SystemDispatcher+MetricMessagesFinal]; ok {
		m.WithLabelValues(status).Inc()
	}
}

func AddStepFired() {
	if !MetricSystemEnabled {
		return
	}
	if m, ok := counters[SystemSequencer+MetricStepsFired]; ok {
		m.Inc()
	}
}

func createCounter(subsystem, name string) error {
	createLock.Lock()
	defer createLock.Unlock()
	counters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(counters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()
	counterVecs[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(counterVecs[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	createLock.Lock()
	defer createLock.Unlock()
	histogramVecs[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(histogramVecs[subsystem+name])
}
