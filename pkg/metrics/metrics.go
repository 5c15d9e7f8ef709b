/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

// Package metrics exports frame assembly and confirmation statistics
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jinr.ru/greenlab/go-spm/pkg/ack"
	"jinr.ru/greenlab/go-spm/pkg/frame"
	"jinr.ru/greenlab/go-spm/pkg/param"
)

const (
	Namespace = "spm"
)

// Confirmation outcomes
const (
	OutcomeMatched   = "matched"
	OutcomeExhausted = "exhausted"
	OutcomeFailed    = "failed"
)

// Metrics implements frame.Observer and ack.Observer
type Metrics struct {
	registry *prometheus.Registry

	blocksDropped  *prometheus.CounterVec
	samplesStored  *prometheus.CounterVec
	samplesClipped *prometheus.CounterVec
	frames         *prometheus.CounterVec
	confirmations  *prometheus.CounterVec
	attempts       prometheus.Histogram
}

var (
	_ frame.Observer = &Metrics{}
	_ ack.Observer   = &Metrics{}
)

// New creates the collectors and registers them in a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		blocksDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frame",
			Name:      "blocks_dropped_total",
			Help:      "Sample blocks discarded by the frame assembler.",
		}, []string{"channel", "cause"}),
		samplesStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frame",
			Name:      "samples_stored_total",
			Help:      "Samples copied into frame buffers.",
		}, []string{"channel"}),
		samplesClipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frame",
			Name:      "samples_clipped_total",
			Help:      "Samples not stored because the frame buffer was full.",
		}, []string{"channel"}),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "frame",
			Name:      "completed_total",
			Help:      "Completed frames.",
		}, []string{"channel", "reason"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ack",
			Name:      "confirmations_total",
			Help:      "Finished parameter confirmations.",
		}, []string{"addr", "outcome"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "ack",
			Name:      "poll_attempts",
			Help:      "Polls needed per confirmation.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
	}
	m.registry.MustRegister(
		m.blocksDropped,
		m.samplesStored,
		m.samplesClipped,
		m.frames,
		m.confirmations,
		m.attempts,
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func channelLabel(channel int32) string {
	return strconv.Itoa(int(channel))
}

func (m *Metrics) BlockDropped(channel int32, cause frame.DropCause) {
	m.blocksDropped.WithLabelValues(channelLabel(channel), cause.String()).Inc()
}

func (m *Metrics) SamplesStored(channel int32, stored, clipped int) {
	label := channelLabel(channel)
	if stored > 0 {
		m.samplesStored.WithLabelValues(label).Add(float64(stored))
	}
	if clipped > 0 {
		m.samplesClipped.WithLabelValues(label).Add(float64(clipped))
	}
}

func (m *Metrics) FrameCompleted(channel int32, reason frame.Reason) {
	m.frames.WithLabelValues(channelLabel(channel), reason.String()).Inc()
}

func (m *Metrics) Confirmed(addr param.Address, res ack.Result, err error) {
	outcome := OutcomeExhausted
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case res.Matched:
		outcome = OutcomeMatched
	}
	m.confirmations.WithLabelValues(addr.String(), outcome).Inc()
	if err == nil {
		m.attempts.Observe(float64(res.Attempts))
	}
}
