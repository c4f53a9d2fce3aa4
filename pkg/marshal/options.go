package marshal

import (
	"github.com/lk2023060901/marshal-garden-go/pkg/log"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/typeutil"
)

type options struct {
	// parallelism 大于 1 时批量模式使用协程池并发组装。
	parallelism int
	// isolate 表示批量模式下单个元素的致命错误不中断整个批次。
	isolate bool
	// prefix 会拼接到输出记录和错误记录的字符串 key 前。
	prefix string
	// skipMissing 表示序列化结果为 Missing 或 nil 时不写入输出记录。
	skipMissing bool
	// strict 表示存在校验错误时返回 merr.ErrRecordInvalid。
	strict bool
	// mergeErrors 表示批量模式的错误详情不按下标区分。
	mergeErrors bool

	resolver Resolver
	only     typeutil.Set[Key]
	exclude  typeutil.Set[Key]
	metrics  bool
	logger   *log.MLogger
}

func defaultOptions() *options {
	return &options{
		parallelism: 1,
		resolver:    DefaultResolver,
	}
}

// Option 用于配置 Marshaller。
type Option func(opts *options)

func WithParallelism(n int) Option {
	return func(opts *options) {
		opts.parallelism = n
	}
}

// WithElementIsolation 为 true 时，批量中的致命错误记录到 Result.Failures，其余元素照常组装。
func WithElementIsolation(v bool) Option {
	return func(opts *options) {
		opts.isolate = v
	}
}

func WithPrefix(prefix string) Option {
	return func(opts *options) {
		opts.prefix = prefix
	}
}

func WithSkipMissing(v bool) Option {
	return func(opts *options) {
		opts.skipMissing = v
	}
}

// WithStrict 为 true 时，只要有字段校验失败，Marshal 在返回结果的同时返回 merr.ErrRecordInvalid。
func WithStrict(v bool) Option {
	return func(opts *options) {
		opts.strict = v
	}
}

// WithIndexErrors 为 false 时，批量模式的 Result.ErrorDetails 把各元素的错误记录合并为一条。
// 默认为 true，按元素下标区分。
func WithIndexErrors(v bool) Option {
	return func(opts *options) {
		opts.mergeErrors = !v
	}
}

// WithResolver 替换默认的取值策略，nil 表示使用 DefaultResolver。
func WithResolver(r Resolver) Option {
	return func(opts *options) {
		if r == nil {
			r = DefaultResolver
		}
		opts.resolver = r
	}
}

// WithOnly 只输出给定 key 的字段，可多次调用累加。
func WithOnly(keys ...Key) Option {
	return func(opts *options) {
		if opts.only == nil {
			opts.only = typeutil.NewSet[Key]()
		}
		opts.only.Insert(keys...)
	}
}

// WithExclude 跳过给定 key 的字段，优先级高于 WithOnly。
func WithExclude(keys ...Key) Option {
	return func(opts *options) {
		if opts.exclude == nil {
			opts.exclude = typeutil.NewSet[Key]()
		}
		opts.exclude.Insert(keys...)
	}
}

// WithMetrics 为 true 时记录 pkg/metrics 中的 marshal 指标。
func WithMetrics(v bool) Option {
	return func(opts *options) {
		opts.metrics = v
	}
}

func WithLogger(logger *log.MLogger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
