/*
Copyright 2024 Ledgerbook Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics counts ledger operations for a session. There is no HTTP endpoint;
// the registry is written to a node exporter textfile when the session ends.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ledgerbook/ledgerbook/internal/ledgererr"
)

const (
	OutcomeOK = "ok"
)

type Collector struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	accounts     prometheus.Gauge
	saveDuration prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerbook",
			Name:      "operations_total",
			Help:      "Ledger operations by kind and outcome.",
		}, []string{"operation", "outcome"}),
		accounts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledgerbook",
			Name:      "accounts",
			Help:      "Number of accounts in the directory.",
		}),
		saveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerbook",
			Name:      "save_duration_seconds",
			Help:      "Time taken to persist the ledger.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// RecordOperation counts one operation. The outcome is "ok" or the lower-cased error code.
func (c *Collector) RecordOperation(operation string, err error) {
	c.operations.WithLabelValues(operation, Outcome(err)).Inc()
}

func (c *Collector) SetAccounts(n int) {
	c.accounts.Set(float64(n))
}

func (c *Collector) ObserveSave(d time.Duration) {
	c.saveDuration.Observe(d.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes every metric to path in the text exposition format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	code := ledgererr.CodeOf(err)
	if code == "" {
		return "error"
	}
	return strings.ToLower(string(code))
}
