package application

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lk2023060901/marshal-garden-go/internal/serializer"
	"github.com/lk2023060901/marshal-garden-go/pkg/config"
	"github.com/lk2023060901/marshal-garden-go/pkg/log"
	"github.com/lk2023060901/marshal-garden-go/pkg/marshal"
	"github.com/lk2023060901/marshal-garden-go/pkg/metrics"
)

// ConfigPathEnv 指定配置文件路径的环境变量。
const ConfigPathEnv = "MARSHAL_CONFIG_FILE_PATH"

// Application 持有配置、日志、Marshaller 与输出编码器。
type Application struct {
	cfg        *config.Config
	marshaller *marshal.Marshaller
	serializer serializer.Serializer
}

func New() *Application {
	return &Application{}
}

// Run 加载配置并初始化各组件。配置文件路径优先级：
//  1. 环境变量 MARSHAL_CONFIG_FILE_PATH
//  2. 命令行 --config <path> 或 --config=<path>
//
// 两者都未提供时使用默认配置。
func (a *Application) Run(args []string) error {
	path, err := configPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return errors.Wrapf(err, "load config %q", path)
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return err
	}
	if cfg.Marshal.Metrics {
		metrics.Register(prometheus.DefaultRegisterer)
	}

	a.serializer, err = serializer.ForName(cfg.Marshal.Serializer)
	if err != nil {
		return err
	}
	a.marshaller, err = marshal.New(cfg.Marshal.Options()...)
	if err != nil {
		return err
	}
	log.Info("application started",
		zap.String("config", path),
		zap.String("serializer", a.serializer.Name()),
		zap.Int("parallelism", cfg.Marshal.Parallelism))
	return nil
}

func (a *Application) Config() *config.Config {
	return a.cfg
}

func (a *Application) Marshaller() *marshal.Marshaller {
	return a.marshaller
}

// Encode 组装 src 并用配置的编码器输出。
// 校验错误不会阻止输出；配置了 strict 时返回的错误中包含错误详情。
func (a *Application) Encode(ctx context.Context, src any, fields *marshal.Fields, many bool) ([]byte, error) {
	if a.marshaller == nil {
		return nil, errors.New("application is not running")
	}
	result, err := a.marshaller.Marshal(ctx, src, fields, many)
	if err != nil {
		return nil, err
	}
	return a.serializer.Marshal(result.Data())
}

// Close 释放 Marshaller 并刷新日志。
func (a *Application) Close() {
	if a.marshaller != nil {
		a.marshaller.Close()
	}
	_ = log.Sync()
}

func configPath(args []string) (string, error) {
	path := os.Getenv(ConfigPathEnv)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--config" {
			if i+1 >= len(args) {
				return "", errors.New("missing value after --config")
			}
			path = args[i+1]
			i++
			continue
		}
		if val, ok := strings.CutPrefix(arg, "--config="); ok && val != "" {
			path = val
		}
	}
	return path, nil
}

// initLogging 用配置中的 log 段替换全局 logger。
func (a *Application) initLogging() error {
	logger, props, err := log.InitLogger(&a.cfg.Log)
	if err != nil {
		return errors.Wrap(err, "init global logger")
	}
	log.ReplaceGlobals(logger, props)
	return nil
}
