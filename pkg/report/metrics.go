/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package report

import (
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/roshan123456789/kunji-finance/internal/log"
	"github.com/roshan123456789/kunji-finance/internal/msgs"
	"github.com/roshan123456789/kunji-finance/pkg/scenario"
)

const metricsSubsystem = "scenario"

type Metrics struct {
	registry *prometheus.Registry
	cases    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	suites   *prometheus.GaugeVec
}

func NewMetrics(ctx context.Context, namespace string, registry *prometheus.Registry) *Metrics {
	m := &Metrics{registry: registry}
	m.cases = prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Subsystem: metricsSubsystem,
		Name: "cases_total", Help: "Scenario cases run, by suite and status"}, []string{"suite", "status"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Subsystem: metricsSubsystem,
		Name: "case_duration_seconds", Help: "Duration of scenario cases",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 8)}, []string{"suite"})
	m.suites = prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Subsystem: metricsSubsystem,
		Name: "suite_failed", Help: "1 if the last run of the suite had failures"}, []string{"suite"})

	registry.MustRegister(m.cases)
	registry.MustRegister(m.duration)
	registry.MustRegister(m.suites)
	log.L(ctx).Debugf("Metrics registered under %s_%s", namespace, metricsSubsystem)
	return m
}

// ObserveResult counts one case
func (m *Metrics) ObserveResult(ctx context.Context, r *scenario.Result) {
	suite := ""
	if len(r.Path) > 0 {
		suite = r.Path[0]
	}
	m.cases.WithLabelValues(suite, string(r.Status)).Inc()
	if r.Status != scenario.StatusSkipped {
		m.duration.WithLabelValues(suite).Observe(r.Duration.Seconds())
	}
}

func (m *Metrics) ObserveReport(rep *scenario.Report) {
	failed := 0.0
	if !rep.OK() {
		failed = 1
	}
	m.suites.WithLabelValues(rep.Suite).Set(failed)
}

// RunnerOption feeds every result the runner records into the metrics
func (m *Metrics) RunnerOption() scenario.Option {
	return scenario.WithResultHook(m.ObserveResult)
}

// WriteTextfile writes the registry in the format of the node exporter textfile collector
func (m *Metrics) WriteTextfile(ctx context.Context, filename string) error {
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return i18n.WrapError(ctx, err, msgs.MsgReportMetricsWrite, filename)
	}
	return nil
}
