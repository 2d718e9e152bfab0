package xasync

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/omeyang/xlogwriter/pkg/observability/xrotate"
)

const instrumentationName = "github.com/omeyang/xlogwriter/xasync"

// 指标名
const (
	metricEnqueued      = "xlogwriter.messages.enqueued"
	metricWritten       = "xlogwriter.messages.written"
	metricRotations     = "xlogwriter.rotations"
	metricCompressFails = "xlogwriter.compress.failures"
	metricWriteErrors   = "xlogwriter.write.errors"
	metricFlushDuration = "xlogwriter.flush.duration"
)

type metrics struct {
	enqueued      metric.Int64Counter
	written       metric.Int64Counter
	rotations     metric.Int64Counter
	compressFails metric.Int64Counter
	writeErrors   metric.Int64Counter
	flushDuration metric.Float64Histogram

	// file 属性标识同一进程中的不同写入器，SetPath 后随活动文件更新
	attrs atomic.Pointer[metric.MeasurementOption]
}

func newMetrics(mp metric.MeterProvider, path string) (*metrics, error) {
	meter := mp.Meter(instrumentationName)
	m := &metrics{}
	m.setFile(path)

	var err error
	counter := func(name, desc string) metric.Int64Counter {
		if err != nil {
			return nil
		}
		var c metric.Int64Counter
		c, err = meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit("1"))
		return c
	}
	m.enqueued = counter(metricEnqueued, "messages accepted by Enqueue")
	m.written = counter(metricWritten, "messages appended to the active file")
	m.rotations = counter(metricRotations, "completed rotation passes")
	m.compressFails = counter(metricCompressFails, "segments left uncompressed")
	m.writeErrors = counter(metricWriteErrors, "failed write attempts")
	if err != nil {
		return nil, fmt.Errorf("xasync: create counter: %w", err)
	}

	m.flushDuration, err = meter.Float64Histogram(metricFlushDuration,
		metric.WithDescription("time spent writing one batch"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xasync: create histogram: %w", err)
	}
	return m, nil
}

func (m *metrics) setFile(path string) {
	opt := metric.WithAttributes(attribute.String("file", path))
	m.attrs.Store(&opt)
}

func (m *metrics) fileAttrs() metric.MeasurementOption {
	return *m.attrs.Load()
}

func (m *metrics) addEnqueued(ctx context.Context) {
	m.enqueued.Add(ctx, 1, m.fileAttrs())
}

func (m *metrics) addWritten(ctx context.Context, n int) {
	if n > 0 {
		m.written.Add(ctx, int64(n), m.fileAttrs())
	}
}

func (m *metrics) addRotation(ctx context.Context, kind xrotate.Kind) {
	m.rotations.Add(ctx, 1, m.fileAttrs(), metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (m *metrics) addCompressFailure(ctx context.Context) {
	m.compressFails.Add(ctx, 1, m.fileAttrs())
}

func (m *metrics) addWriteError(ctx context.Context) {
	m.writeErrors.Add(ctx, 1, m.fileAttrs())
}

func (m *metrics) recordFlush(ctx context.Context, elapsed time.Duration) {
	m.flushDuration.Record(ctx, elapsed.Seconds(), m.fileAttrs())
}
