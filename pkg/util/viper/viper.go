package viper

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，提供 YAML / JSON / TOML 配置加载与环境变量覆盖。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。
// envPrefix 非空时，形如 PREFIX_MARSHAL_PARALLELISM 的环境变量会覆盖 marshal.parallelism。
func New(envPrefix string) *Config {
	v := spfviper.New()
	if envPrefix != "" {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		v.AutomaticEnv()
	}
	return &Config{v: v}
}

// LoadFile 加载配置文件，类型通过扩展名推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		c.v.SetConfigType("yaml")
	case ".json":
		c.v.SetConfigType("json")
	case ".toml":
		c.v.SetConfigType("toml")
	default:
		return errors.Newf("unsupported config file extension %q", ext)
	}

	return errors.Wrapf(c.v.ReadInConfig(), "read config %s", path)
}

// SetDefault 设置 key 的默认值，配置文件与环境变量均未提供时生效。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
//
// 子配置取自 AllSettings，默认值、配置文件与环境变量按优先级合并后再解码，
// 避免 spf13/viper 的 UnmarshalKey 在配置文件出现该段时丢掉段内默认值。
// key 不存在时 dst 保持不变。
func (c *Config) UnmarshalKey(key string, dst any) error {
	settings, ok := c.section(key)
	if !ok {
		return nil
	}
	sub := spfviper.New()
	if err := sub.MergeConfigMap(settings); err != nil {
		return errors.Wrapf(err, "merge config section %s", key)
	}
	return errors.Wrapf(sub.Unmarshal(dst), "unmarshal config section %s", key)
}

func (c *Config) section(key string) (map[string]any, bool) {
	settings := c.v.AllSettings()
	for _, seg := range strings.Split(strings.ToLower(key), ".") {
		next, ok := settings[seg].(map[string]any)
		if !ok {
			return nil, false
		}
		settings = next
	}
	return settings, true
}
