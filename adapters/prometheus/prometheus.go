// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package prometheus provides a Prometheus implementation of proc.Metrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"code.hybscloud.com/proc"
)

// Default histogram buckets for Work duration (in seconds).
var defaultBuckets = []float64{
	.0001, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// metrics implements proc.Metrics using Prometheus. Every series is
// labelled with the Driver name given by proc.WithName.
type metrics struct {
	inboxDepth   *prometheus.GaugeVec
	inFlight     *prometheus.GaugeVec
	dispatched   *prometheus.CounterVec
	rejected     *prometheus.CounterVec
	completed    *prometheus.CounterVec
	abandoned    *prometheus.CounterVec
	workDuration *prometheus.HistogramVec
}

// NewMetrics registers the proc collectors with reg and returns the
// proc.Metrics that feeds them.
func NewMetrics(reg prometheus.Registerer) proc.Metrics {
	m := &metrics{
		inboxDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proc_inbox_depth",
			Help: "Queued messages not yet dispatched",
		}, []string{"proc"}),

		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "proc_in_flight",
			Help: "Work units currently outstanding",
		}, []string{"proc"}),

		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_dispatched_total",
			Help: "Total number of messages handed to the handler",
		}, []string{"proc"}),

		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_rejected_total",
			Help: "Total number of messages answered without the handler",
		}, []string{"proc", "kind"}),

		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_completed_total",
			Help: "Total number of finished work units",
		}, []string{"proc", "success"}),

		abandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "proc_abandoned_total",
			Help: "Total number of work units dropped because the caller went away",
		}, []string{"proc"}),

		workDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "proc_work_duration_seconds",
			Help:    "Time from dispatch to completion in seconds",
			Buckets: defaultBuckets,
		}, []string{"proc"}),
	}

	reg.MustRegister(
		m.inboxDepth,
		m.inFlight,
		m.dispatched,
		m.rejected,
		m.completed,
		m.abandoned,
		m.workDuration,
	)

	return m
}

func (m *metrics) InboxDepth(name string, depth int) {
	m.inboxDepth.WithLabelValues(name).Set(float64(depth))
}

func (m *metrics) InFlight(name string, count int) {
	m.inFlight.WithLabelValues(name).Set(float64(count))
}

func (m *metrics) Dispatched(name string) {
	m.dispatched.WithLabelValues(name).Inc()
}

func (m *metrics) Rejected(name string, kind proc.Kind) {
	m.rejected.WithLabelValues(name, kind.String()).Inc()
}

func (m *metrics) Completed(name string, success bool, elapsed time.Duration) {
	m.completed.WithLabelValues(name, strconv.FormatBool(success)).Inc()
	m.workDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *metrics) Abandoned(name string) {
	m.abandoned.WithLabelValues(name).Inc()
}

var _ proc.Metrics = (*metrics)(nil)
