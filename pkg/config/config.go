package config

import (
	"github.com/samber/lo"

	"github.com/lk2023060901/marshal-garden-go/internal/serializer"
	"github.com/lk2023060901/marshal-garden-go/pkg/log"
	"github.com/lk2023060901/marshal-garden-go/pkg/marshal"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/merr"
	"github.com/lk2023060901/marshal-garden-go/pkg/util/viper"
)

// EnvPrefix 为环境变量覆盖配置时使用的前缀，例如 MARSHAL_MARSHAL_PARALLELISM。
const EnvPrefix = "MARSHAL"

// MarshalConfig 对应配置文件中的 marshal 段。
type MarshalConfig struct {
	// Parallelism 大于 1 时批量模式并发组装，0 或 1 表示串行。
	Parallelism int `toml:"parallelism" json:"parallelism" mapstructure:"parallelism"`
	// IsolateElements 表示批量模式下单个元素失败不中断整个批次。
	IsolateElements bool `toml:"isolate-elements" json:"isolate-elements" mapstructure:"isolate-elements"`
	// SkipMissing 表示序列化结果为缺失或 nil 的字段不输出。
	SkipMissing bool `toml:"skip-missing" json:"skip-missing" mapstructure:"skip-missing"`
	// Strict 表示存在校验错误时整体返回错误。
	Strict bool `toml:"strict" json:"strict" mapstructure:"strict"`
	// Prefix 拼接到输出字段名前。
	Prefix string `toml:"prefix" json:"prefix" mapstructure:"prefix"`
	// Only 非空时只输出这些字段。
	Only []string `toml:"only" json:"only" mapstructure:"only"`
	// Exclude 中的字段不输出。
	Exclude []string `toml:"exclude" json:"exclude" mapstructure:"exclude"`
	// Metrics 表示是否记录 Prometheus 指标。
	Metrics bool `toml:"metrics" json:"metrics" mapstructure:"metrics"`
	// MergeErrors 表示批量模式的错误详情合并为一条，不按元素下标区分。
	MergeErrors bool `toml:"merge-errors" json:"merge-errors" mapstructure:"merge-errors"`
	// Serializer 为输出编码格式，json 或 proto。
	Serializer string `toml:"serializer" json:"serializer" mapstructure:"serializer"`
}

type Config struct {
	Marshal MarshalConfig `toml:"marshal" json:"marshal" mapstructure:"marshal"`
	Log     log.Config    `toml:"log" json:"log" mapstructure:"log"`
}

// Default 返回默认配置：串行、JSON 输出、info 级别日志输出到标准输出。
func Default() *Config {
	return &Config{
		Marshal: MarshalConfig{
			Parallelism: 1,
			Serializer:  serializer.NameJSON,
		},
		Log: log.Config{
			Level:  "info",
			Format: log.FormatText,
			Stdout: true,
		},
	}
}

// Load 读取配置文件，path 为空时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New(EnvPrefix)
	setDefaults(v, Default())
	if path != "" {
		if err := v.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.UnmarshalKey("marshal", &cfg.Marshal); err != nil {
		return nil, merr.WrapErrConfigInvalid("marshal", err.Error())
	}
	if err := v.UnmarshalKey("log", &cfg.Log); err != nil {
		return nil, merr.WrapErrConfigInvalid("log", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults 为标量 key 注册默认值，环境变量只能覆盖已登记的 key。
func setDefaults(v *viper.Config, def *Config) {
	v.SetDefault("marshal.parallelism", def.Marshal.Parallelism)
	v.SetDefault("marshal.isolate-elements", def.Marshal.IsolateElements)
	v.SetDefault("marshal.skip-missing", def.Marshal.SkipMissing)
	v.SetDefault("marshal.strict", def.Marshal.Strict)
	v.SetDefault("marshal.prefix", def.Marshal.Prefix)
	v.SetDefault("marshal.metrics", def.Marshal.Metrics)
	v.SetDefault("marshal.merge-errors", def.Marshal.MergeErrors)
	v.SetDefault("marshal.serializer", def.Marshal.Serializer)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.stdout", def.Log.Stdout)
	v.SetDefault("log.disable-timestamp", def.Log.DisableTimestamp)
	v.SetDefault("log.development", def.Log.Development)
	v.SetDefault("log.file.rootpath", def.Log.File.RootPath)
	v.SetDefault("log.file.filename", def.Log.File.Filename)
	v.SetDefault("log.file.max-size", def.Log.File.MaxSize)
	v.SetDefault("log.file.max-days", def.Log.File.MaxDays)
	v.SetDefault("log.file.max-backups", def.Log.File.MaxBackups)
}

func (c *Config) Validate() error {
	if c.Marshal.Parallelism < 0 {
		return merr.WrapErrConfigInvalid("marshal.parallelism", "must not be negative")
	}
	if _, err := serializer.ForName(c.Marshal.Serializer); err != nil {
		return merr.WrapErrConfigInvalid("marshal.serializer", err.Error())
	}
	switch c.Log.Format {
	case "", log.FormatJSON, log.FormatText, log.FormatConsole:
	default:
		return merr.WrapErrConfigInvalid("log.format", "expect json, text or console")
	}
	return nil
}

// Options 把配置转换为 marshal.Option。
func (c *MarshalConfig) Options() []marshal.Option {
	opts := []marshal.Option{
		marshal.WithParallelism(c.Parallelism),
		marshal.WithElementIsolation(c.IsolateElements),
		marshal.WithSkipMissing(c.SkipMissing),
		marshal.WithStrict(c.Strict),
		marshal.WithPrefix(c.Prefix),
		marshal.WithMetrics(c.Metrics),
		marshal.WithIndexErrors(!c.MergeErrors),
	}
	if len(c.Only) > 0 {
		opts = append(opts, marshal.WithOnly(nameKeys(c.Only)...))
	}
	if len(c.Exclude) > 0 {
		opts = append(opts, marshal.WithExclude(nameKeys(c.Exclude)...))
	}
	return opts
}

func nameKeys(names []string) []marshal.Key {
	return lo.Map(names, func(name string, _ int) marshal.Key {
		return marshal.NameKey(name)
	})
}
