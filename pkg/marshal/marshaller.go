package marshal

import (
	"context"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/marshal-garden-go/pkg/log"
	"github.com/lk2023060901/marshal-garden-go/pkg/metrics"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/conc"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
)

const tracerName = "marshal"

// Marshaller 根据字段描述符把源对象组装为输出记录。
//
// Marshaller 可以被多个 goroutine 共享。配置了并发度时内部持有协程池，
// 用完需要调用 Close。
type Marshaller struct {
	log.Binder

	opts   *options
	pool   *conc.Pool[struct{}]
	closed atomic.Bool
}

var defaultMarshaller = &Marshaller{opts: defaultOptions()}

// Marshal 使用默认的串行 Marshaller。
func Marshal(src any, fields *Fields, many bool) (*Result, error) {
	return defaultMarshaller.Marshal(context.Background(), src, fields, many)
}

func New(opts ...Option) (*Marshaller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.parallelism < 0 {
		return nil, merr.WrapErrParameterInvalidMsg("parallelism must not be negative, got %d", o.parallelism)
	}

	m := &Marshaller{opts: o}
	m.BindComponent("marshaller")
	if o.logger != nil {
		m.SetLogger(o.logger)
	}
	if o.parallelism > 1 {
		m.pool = conc.NewPool[struct{}](o.parallelism,
			conc.WithConcealPanic(true),
			conc.WithName("marshal-batch"),
		)
	}
	m.Logger().Debug("marshaller created",
		zap.Int("parallelism", o.parallelism),
		zap.Bool("isolate", o.isolate),
		zap.Bool("strict", o.strict),
		zap.String("prefix", o.prefix))
	return m, nil
}

// Close 释放协程池，可重复调用。
func (m *Marshaller) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	if m.pool != nil {
		m.pool.Release()
	}
}

// MarshalOne 组装单个源对象，返回输出记录和错误记录。
func (m *Marshaller) MarshalOne(ctx context.Context, src any, fields *Fields) (*Record, *Record, error) {
	result, err := m.Marshal(ctx, src, fields, false)
	if result == nil {
		return nil, nil, err
	}
	out, errs := result.One()
	return out, errs, err
}

// MarshalMany 以批量模式组装 src。
func (m *Marshaller) MarshalMany(ctx context.Context, src any, fields *Fields) (*Result, error) {
	return m.Marshal(ctx, src, fields, true)
}

// Marshal 把 src 组装为输出记录。
//
// many 为 false 时 src 是单个对象；为 true 时 src 必须是 slice / array 或 Sequence，
// nil 视为空序列。致命错误默认终止整个批次，返回的错误可通过 FailedIndex 取得元素下标；
// 开启 WithElementIsolation 后致命错误记录在 Result.Failures 中。
// 开启 WithStrict 且存在校验错误时，返回结果的同时返回 merr.ErrRecordInvalid。
func (m *Marshaller) Marshal(ctx context.Context, src any, fields *Fields, many bool) (*Result, error) {
	if m.closed.Load() {
		return nil, merr.ErrPoolClosed
	}

	ctx, span := log.StartIntent(ctx, tracerName, "Marshal")
	defer span.End()

	entries := fields.filter(m.opts.only, m.opts.exclude)
	if err := checkRendered(entries, m.opts.prefix); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("marshal.many", many),
		attribute.Int("marshal.fields", len(entries)),
	)
	logger := m.Logger().With(log.FieldMode(many), zap.Stringer("traceID", span.SpanContext().TraceID()))

	start := time.Now()
	asm := newAssembler(entries, m.opts)

	var (
		result *Result
		err    error
	)
	if many {
		result, err = m.marshalMany(ctx, asm, src)
	} else {
		result = newResult(false, 1)
		result.Records[0], result.Errors[0], err = asm.assemble(src)
	}
	m.observe(result, err, many, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal aborted")
		logger.Warn("marshal aborted",
			zap.Error(err),
			zap.Stringer("errorType", merr.GetErrorType(err)),
			zap.Bool("retriable", merr.IsRetryableErr(err)))
		return nil, err
	}
	result.mergeErrors = m.opts.mergeErrors

	if n := result.validationCount(); n > 0 {
		logger.RatedDebug(1, "fields failed validation", zap.Int("count", n))
	}
	if failed := len(result.Failed()); failed > 0 {
		logger.RatedWarn(1, "batch elements failed", zap.Int("count", failed), zap.Error(result.Err()))
	}
	if m.opts.strict {
		if invalid := result.invalidCount(); invalid > 0 {
			return result, merr.WrapErrRecordInvalid(invalid, result.ErrorDetails())
		}
	}
	return result, nil
}

func (m *Marshaller) marshalMany(ctx context.Context, asm *assembler, src any) (*Result, error) {
	if src == nil {
		return newResult(true, 0), nil
	}
	seq, err := sequenceOf(src)
	if err != nil {
		return nil, err
	}

	n := seq.Len()
	result := newResult(true, n)
	if m.pool == nil || n < 2 {
		for i := 0; i < n; i++ {
			if err := m.assembleElement(asm, result, i, seq.At(i)); err != nil {
				return nil, err
			}
		}
		return result, nil
	}

	log.Ctx(ctx).Debug("assemble batch on pool", zap.Int("size", n), zap.Int("pool", m.pool.Cap()))

	// 记录当前最小的失败下标，下标更大的元素不再组装，
	// 下标更小的元素照常执行，保证最终报告的是最小失败下标。
	lowest := atomic.NewInt64(math.MaxInt64)
	futures := make([]*conc.Future[struct{}], n)
	for i := 0; i < n; i++ {
		item := seq.At(i)
		futures[i] = m.pool.Submit(func() (struct{}, error) {
			if !m.opts.isolate && int64(i) > lowest.Load() {
				return struct{}{}, nil
			}
			err := m.assembleElement(asm, result, i, item)
			if err != nil {
				for cur := lowest.Load(); int64(i) < cur; cur = lowest.Load() {
					if lowest.CompareAndSwap(cur, int64(i)) {
						break
					}
				}
			}
			return struct{}{}, err
		})
	}
	if err := conc.AwaitAll(futures...); err != nil {
		return nil, err
	}
	return result, nil
}

// assembleElement 组装第 i 个元素并写入 result 的对应位置。
// 隔离模式下致命错误写入 Failures[i] 并返回 nil。
func (m *Marshaller) assembleElement(asm *assembler, result *Result, i int, item any) error {
	out, errs, err := asm.assemble(item)
	if err != nil {
		elemErr := &ElementError{Index: i, Err: err}
		if m.opts.isolate {
			m.Logger().RatedDebug(1, "batch element isolated", log.FieldIndex(i), zap.Error(err))
			result.Failures[i] = elemErr
			return nil
		}
		return elemErr
	}
	result.Records[i] = out
	result.Errors[i] = errs
	return nil
}

func (m *Marshaller) observe(result *Result, err error, many bool, elapsed time.Duration) {
	if !m.opts.metrics {
		return
	}
	mode := metrics.ModeLabel(many)
	metrics.MarshalLatency.WithLabelValues(mode).Observe(float64(elapsed.Microseconds()) / 1000)
	if err != nil {
		metrics.MarshalFieldErrorsTotal.WithLabelValues(metrics.ErrorKindFatal).Inc()
		return
	}
	if many {
		metrics.MarshalBatchSize.Observe(float64(result.Len()))
	}
	metrics.MarshalRecordsTotal.WithLabelValues(mode).Add(float64(result.recordCount()))
	metrics.MarshalFieldErrorsTotal.WithLabelValues(metrics.ErrorKindValidation).Add(float64(result.validationCount()))
	if failed := len(result.Failed()); failed > 0 {
		metrics.MarshalElementFailuresTotal.Add(float64(failed))
		metrics.MarshalFieldErrorsTotal.WithLabelValues(metrics.ErrorKindFatal).Add(float64(failed))
	}
}
