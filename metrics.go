package cgsep

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordImportance is called after importance has been computed for a run.
	RecordImportance(duration time.Duration, err error)

	// RecordPartition is called after misclassification filtering.
	RecordPartition(correct, incorrect int)

	// RecordSubsetSearch is called after the k-best searches of a run.
	// evaluated is the total number of scored subsets.
	RecordSubsetSearch(k, evaluated int, duration time.Duration)

	// RecordExport is called after results have been exported.
	RecordExport(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordImportance(time.Duration, error)      {}
func (NoopMetricsCollector) RecordPartition(int, int)                   {}
func (NoopMetricsCollector) RecordSubsetSearch(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordExport(int64, time.Duration, error)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ImportanceCount      atomic.Int64
	ImportanceErrors     atomic.Int64
	ImportanceTotalNanos atomic.Int64
	CorrectGraphs        atomic.Int64
	IncorrectGraphs      atomic.Int64
	SearchCount          atomic.Int64
	SubsetsEvaluated     atomic.Int64
	SearchTotalNanos     atomic.Int64
	ExportCount          atomic.Int64
	ExportErrors         atomic.Int64
	ExportBytes          atomic.Int64
}

// RecordImportance implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImportance(duration time.Duration, err error) {
	b.ImportanceCount.Add(1)
	b.ImportanceTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ImportanceErrors.Add(1)
	}
}

// RecordPartition implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPartition(correct, incorrect int) {
	b.CorrectGraphs.Add(int64(correct))
	b.IncorrectGraphs.Add(int64(incorrect))
}

// RecordSubsetSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSubsetSearch(_ int, evaluated int, duration time.Duration) {
	b.SearchCount.Add(1)
	b.SubsetsEvaluated.Add(int64(evaluated))
	b.SearchTotalNanos.Add(duration.Nanoseconds())
}

// RecordExport implements MetricsCollector.
func (b *BasicMetricsCollector) RecordExport(bytes int64, _ time.Duration, err error) {
	b.ExportCount.Add(1)
	b.ExportBytes.Add(bytes)
	if err != nil {
		b.ExportErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ImportanceCount:    b.ImportanceCount.Load(),
		ImportanceErrors:   b.ImportanceErrors.Load(),
		ImportanceAvgNanos: avg(b.ImportanceTotalNanos.Load(), b.ImportanceCount.Load()),
		CorrectGraphs:      b.CorrectGraphs.Load(),
		IncorrectGraphs:    b.IncorrectGraphs.Load(),
		SearchCount:        b.SearchCount.Load(),
		SubsetsEvaluated:   b.SubsetsEvaluated.Load(),
		SearchAvgNanos:     avg(b.SearchTotalNanos.Load(), b.SearchCount.Load()),
		ExportCount:        b.ExportCount.Load(),
		ExportErrors:       b.ExportErrors.Load(),
		ExportBytes:        b.ExportBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ImportanceCount    int64
	ImportanceErrors   int64
	ImportanceAvgNanos int64
	CorrectGraphs      int64
	IncorrectGraphs    int64
	SearchCount        int64
	SubsetsEvaluated   int64
	SearchAvgNanos     int64
	ExportCount        int64
	ExportErrors       int64
	ExportBytes        int64
}
