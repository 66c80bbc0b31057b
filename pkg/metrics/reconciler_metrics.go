// © Broadcom. All Rights Reserved.
// The term “Broadcom” refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the registry to which the reconciler metrics are added.
var Registry = prometheus.NewRegistry()

var (
	reconcilerMetricsOnce sync.Once
	reconcilerMetrics     *ReconcilerMetrics
)

type ReconcilerMetrics struct {
	remoteCalls   *prometheus.CounterVec
	retries       *prometheus.CounterVec
	reconciles    *prometheus.CounterVec
	changes       *prometheus.CounterVec
	lastReconcile *prometheus.GaugeVec
}

// NewReconcilerMetrics initializes a singleton and registers all the defined
// metrics.
func NewReconcilerMetrics() *ReconcilerMetrics {
	reconcilerMetricsOnce.Do(func() {
		reconcilerMetrics = &ReconcilerMetrics{
			remoteCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "remote",
				Name:      "calls_total",
				Help:      "Attempts of remote vCenter operations",
			}, []string{
				operationLabel,
				resultLabel,
			}),
			retries: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "remote",
				Name:      "retries_total",
				Help:      "Retries of remote vCenter operations by fault kind",
			}, []string{
				operationLabel,
				kindLabel,
			}),
			reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "machine",
				Name:      "reconciles_total",
				Help:      "Reconciled descriptors by outcome",
			}, []string{
				outcomeLabel,
			}),
			changes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "machine",
				Name:      "changes_total",
				Help:      "Properties changed by the reconciler",
			}, []string{
				propertyLabel,
			}),
			lastReconcile: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "machine",
				Name:      "last_reconcile_timestamp_seconds",
				Help:      "Unix time of the last reconcile of a machine",
			}, []string{
				pathLabel,
				outcomeLabel,
			}),
		}

		Registry.MustRegister(
			reconcilerMetrics.remoteCalls,
			reconcilerMetrics.retries,
			reconcilerMetrics.reconciles,
			reconcilerMetrics.changes,
			reconcilerMetrics.lastReconcile,
		)
	})

	return reconcilerMetrics
}

// RegisterRemoteCall records one attempt of a remote operation.
func (m *ReconcilerMetrics) RegisterRemoteCall(operation string, err error) {
	result := resultSuccess
	if err != nil {
		result = resultFailure
	}
	m.remoteCalls.WithLabelValues(operation, result).Inc()
}

// RegisterRetry records a retry of a remote operation caused by a fault of
// the given kind.
func (m *ReconcilerMetrics) RegisterRetry(logger logr.Logger, operation, kind string) {
	logger.V(5).Info("Adding metrics for a retry", "operation", operation, "kind", kind)
	m.retries.WithLabelValues(operation, kind).Inc()
}

// RegisterReconcile records the outcome of reconciling one descriptor.
func (m *ReconcilerMetrics) RegisterReconcile(
	logger logr.Logger,
	path, outcome string,
	changedProperties []string) {

	logger.V(5).Info("Adding metrics for a reconcile", "outcome", outcome)
	m.reconciles.WithLabelValues(outcome).Inc()
	for _, p := range changedProperties {
		m.changes.WithLabelValues(p).Inc()
	}
	m.lastReconcile.DeletePartialMatch(prometheus.Labels{pathLabel: path})
	m.lastReconcile.WithLabelValues(path, outcome).Set(float64(time.Now().Unix()))
}

// WriteToTextfile writes the registry in the text exposition format to path
// for a node-exporter textfile collector.
func WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
