// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import "time"

// MetricsRecorder collects the outcome of a single dispatch and records it
// once the dispatch returns.
type MetricsRecorder struct {
	startTime time.Time
	namespace string
	label     string
	status    string
}

// NewMetricsRecorder starts timing a dispatch for namespace.
func NewMetricsRecorder(namespace string) *MetricsRecorder {
	return &MetricsRecorder{startTime: time.Now(), namespace: namespace}
}

// SetLabel sets the label reported for the dispatch.
func (m *MetricsRecorder) SetLabel(label string) {
	m.label = label
}

// SetStatus sets the dispatch outcome.
func (m *MetricsRecorder) SetStatus(status string) {
	m.status = status
}

// Record writes the collected metrics if a label is available.
func (m *MetricsRecorder) Record() {
	if m.label == "" {
		return
	}

	RecordDispatch(m.label, m.namespace, m.status)
	RecordDispatchDuration(m.label, m.namespace, time.Since(m.startTime))
}
