// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics contains the Prometheus collectors for plughost. It satisfies the
// recorder interfaces of the plugin loader, the view dispatcher, and the
// storage registry.
type Metrics struct {
	PluginsLoaded     *prometheus.CounterVec
	PluginLoadsFailed prometheus.Counter
	ViewActivations   *prometheus.CounterVec
	HookFailures      *prometheus.CounterVec
	StorageSaves      *prometheus.CounterVec
}

// NewMetrics creates and registers the plughost metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PluginsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plughost_plugins_loaded_total",
				Help: "Total number of plugins loaded by runtime",
			},
			[]string{"runtime"},
		),
		PluginLoadsFailed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "plughost_plugin_load_failures_total",
				Help: "Total number of plugin units that failed to load",
			},
		),
		ViewActivations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plughost_view_activations_total",
				Help: "Total number of view activations by plugin",
			},
			[]string{"plugin"},
		),
		HookFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plughost_view_hook_failures_total",
				Help: "Total number of failed view-enter hooks by plugin",
			},
			[]string{"plugin"},
		),
		StorageSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plughost_storage_saves_total",
				Help: "Total number of namespace saves by namespace and status",
			},
			[]string{"namespace", "status"},
		),
	}

	reg.MustRegister(m.PluginsLoaded, m.PluginLoadsFailed, m.ViewActivations, m.HookFailures, m.StorageSaves)

	return m
}

// PluginLoaded counts one plugin loaded by the named runtime.
func (m *Metrics) PluginLoaded(runtime string) {
	m.PluginsLoaded.WithLabelValues(runtime).Inc()
}

// PluginLoadFailed counts one rejected plugin unit.
func (m *Metrics) PluginLoadFailed() {
	m.PluginLoadsFailed.Inc()
}

// ViewActivated counts one view activation.
func (m *Metrics) ViewActivated(plugin string) {
	m.ViewActivations.WithLabelValues(plugin).Inc()
}

// HookFailed counts one failed view-enter hook.
func (m *Metrics) HookFailed(plugin string) {
	m.HookFailures.WithLabelValues(plugin).Inc()
}

// StorageSaved counts one namespace save.
func (m *Metrics) StorageSaved(namespace string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StorageSaves.WithLabelValues(namespace, status).Inc()
}
