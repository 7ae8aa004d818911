package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Operation names used as metric keys.
const (
	OpChatTurn  = "chat_turn"
	OpRetrieval = "retrieval"
	OpIngest    = "ingest"
)

// Metrics collects in-process counters for assistant operations.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	operations map[string]*OperationMetrics
}

// OperationMetrics represents counters for a single operation kind.
type OperationMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		operations: make(map[string]*OperationMetrics),
	}
}

// Global metrics instance.
var globalMetrics = NewMetrics()

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a started request for an operation.
func (m *Metrics) RecordRequest(operation string) {
	m.requestTotal.Add(1)
	m.getOperation(operation).executionCount.Add(1)
}

// RecordFailure records a failed request for an operation.
func (m *Metrics) RecordFailure(operation string) {
	m.requestFailed.Add(1)
	m.getOperation(operation).errorCount.Add(1)
}

// RecordDuration records how long one execution of an operation took.
func (m *Metrics) RecordDuration(operation string, duration time.Duration) {
	m.getOperation(operation).totalDuration.Add(duration.Milliseconds())
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) getOperation(operation string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[operation]
	if !ok {
		om = &OperationMetrics{}
		m.operations[operation] = om
	}
	return om
}

// GetAverageDuration returns the average duration in milliseconds for an
// operation, 0 when it has never run.
func (m *Metrics) GetAverageDuration(operation string) int64 {
	om := m.getOperation(operation)
	count := om.executionCount.Load()
	if count == 0 {
		return 0
	}
	return om.totalDuration.Load() / count
}

// Reset resets all metrics (useful for testing).
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	operationSnapshots := make(map[string]*OperationSnapshot, len(m.operations))
	for operation, om := range m.operations {
		count := om.executionCount.Load()
		snapshot := &OperationSnapshot{
			ExecutionCount: count,
			TotalDuration:  om.totalDuration.Load(),
			ErrorCount:     om.errorCount.Load(),
		}
		if count > 0 {
			snapshot.AverageDuration = snapshot.TotalDuration / count
		}
		operationSnapshots[operation] = snapshot
	}

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		Operations:    operationSnapshots,
	}
}

// MetricsSnapshot is a point-in-time view of the collected metrics.
type MetricsSnapshot struct {
	RequestTotal  int64                         `json:"request_total"`
	RequestFailed int64                         `json:"request_failed"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
}

// OperationSnapshot is a point-in-time view of one operation's counters.
type OperationSnapshot struct {
	ExecutionCount  int64 `json:"execution_count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}
