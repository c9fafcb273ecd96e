package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置结构
// 设计说明：使用Viper管理配置，支持YAML文件、环境变量覆盖
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	MQ        MQConfig        `mapstructure:"mq"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StorageConfig 集合快照存储配置
// driver决定SnapshotStore的实现：
// - jsonfile（默认）：单个人类可读的JSON文件
// - mysql：整表作为快照，事务内整体替换
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // jsonfile | mysql
	Path   string `mapstructure:"path"`   // jsonfile驱动的文件路径
}

// DatabaseConfig MySQL配置（storage.driver=mysql时生效）
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN 生成MySQL连接字符串
// 格式：user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Local
// 注意：loc参数需要URL编码（Asia/Shanghai → Asia%2FShanghai）
func (d DatabaseConfig) DSN() string {
	loc := url.QueryEscape(d.Loc)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, loc)
}

// RedisConfig Redis配置（rate_limit.backend=redis时生效）
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RateLimitConfig 限流配置
// 按路由类别（HTTP方法）配置固定窗口内的请求上限，0表示不限制
type RateLimitConfig struct {
	Backend       string         `mapstructure:"backend"` // memory | redis
	Window        time.Duration  `mapstructure:"window"`  // 计数窗口，默认60s
	KeyByClientIP bool           `mapstructure:"key_by_client_ip"`
	Ceilings      CeilingsConfig `mapstructure:"ceilings"`
}

// CeilingsConfig 各路由类别的窗口内请求上限
type CeilingsConfig struct {
	Get    int `mapstructure:"get"`
	Post   int `mapstructure:"post"`
	Put    int `mapstructure:"put"`
	Delete int `mapstructure:"delete"`
}

// MQConfig RabbitMQ事件发布配置
type MQConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// Load 加载配置文件
// 支持：
// 1. 默认加载config/config.yaml
// 2. 环境变量覆盖（如BOOKSHELF_STORAGE_PATH、BOOKSHELF_SERVER_PORT）
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 缺省值：不提供配置文件也能以默认参数启动
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时使用默认值，其他错误（格式损坏等）照常报出
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	// 环境变量绑定（自动转换，如BOOKSHELF_STORAGE_PATH → storage.path）
	v.SetEnvPrefix("BOOKSHELF")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 设置缺省配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5055)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("storage.driver", "jsonfile")
	v.SetDefault("storage.path", "data/books.json")
	v.SetDefault("rate_limit.backend", "memory")
	v.SetDefault("rate_limit.window", "60s")
	v.SetDefault("rate_limit.key_by_client_ip", false)
	v.SetDefault("rate_limit.ceilings.get", 10)
	v.SetDefault("rate_limit.ceilings.post", 0) // 0 = 不限制
	v.SetDefault("rate_limit.ceilings.put", 5)
	v.SetDefault("rate_limit.ceilings.delete", 3)
	v.SetDefault("mq.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}

	switch cfg.Storage.Driver {
	case "jsonfile":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("jsonfile驱动必须配置storage.path")
		}
	case "mysql":
		// DSN由database段提供
	default:
		return fmt.Errorf("不支持的存储驱动: %s", cfg.Storage.Driver)
	}

	switch cfg.RateLimit.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("不支持的限流后端: %s", cfg.RateLimit.Backend)
	}

	if cfg.RateLimit.Window <= 0 {
		return fmt.Errorf("限流窗口必须大于0: %v", cfg.RateLimit.Window)
	}

	if cfg.MQ.Enabled && cfg.MQ.URL == "" {
		return fmt.Errorf("启用MQ时必须配置mq.url")
	}

	return nil
}
