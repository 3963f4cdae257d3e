package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

// Config 保存进程级配置。
// 字段提供开发友好的默认值；生产环境请在 config.yaml 或环境变量中覆盖。
type Config struct {
	Env      string
	HTTPAddr string
	Database DatabaseConfig
	Redis    RedisConfig
	Limits   LimitConfig
	Security SecurityConfig
	Log      LogConfig
}

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig 描述关系型存储的连接参数；Driver 决定使用哪一种方言。
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	Params   string
	// SQLite 数据文件路径（也可为 file: URI，例如内存库）
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN 按驱动生成连接串。
func (d DatabaseConfig) DSN() string {
	host := d.Host
	if host == "" {
		host = "127.0.0.1"
	}
	db := d.DBName
	if db == "" {
		db = "cheeseshop"
	}
	switch d.Driver {
	case DriverPostgres:
		port := d.Port
		if port == 0 {
			port = 5432
		}
		params := d.Params
		if params == "" {
			params = "sslmode=disable"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d %s", host, d.User, d.Password, db, port, params)
	case DriverSQLite:
		p := d.Path
		if p == "" {
			p = "cheeseshop.db"
		}
		if !strings.HasPrefix(p, "file:") {
			p = "file:" + p
		}
		sep := "?"
		if strings.Contains(p, "?") {
			sep = "&"
		}
		// modernc 驱动默认不开启外键约束
		return p + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	default:
		port := d.Port
		if port == 0 {
			port = 3306
		}
		params := d.Params
		if params == "" {
			params = "parseTime=true&loc=Local&charset=utf8mb4,utf8"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", d.User, d.Password, host, port, db, params)
	}
}

// DSNMasked 返回隐藏口令后的连接串，仅用于日志输出。
func (d DatabaseConfig) DSNMasked() string {
	masked := d
	if masked.Password != "" {
		masked.Password = "******"
	}
	return masked.DSN()
}

// RedisConfig 为空 Addr 时不连接 Redis（同时关闭写接口限流）。
type RedisConfig struct {
	Addr     string
	DB       int
	Password string
}

type LimitConfig struct {
	WritePerMinute int
	Window         time.Duration
}

type SecurityConfig struct {
	HSTS struct {
		Enabled           bool
		MaxAgeSeconds     int
		IncludeSubdomains bool
	}
}

type LogConfig struct {
	Level  string
	Format string // json | text
}

// Defaults 返回内置默认配置：MySQL 127.0.0.1:3306 用户 root/123456；Redis 127.0.0.1:6379。
func Defaults() Config {
	cfg := Config{
		Env:      "dev",
		HTTPAddr: ":8080",
		Database: DatabaseConfig{Driver: DriverMySQL, Host: "127.0.0.1", Port: 3306, User: "root", Password: "123456", DBName: "cheeseshop", MaxOpenConns: 20, MaxIdleConns: 5},
		Redis:    RedisConfig{Addr: "127.0.0.1:6379"},
		Limits:   LimitConfig{WritePerMinute: 60, Window: time.Minute},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
	cfg.Security.HSTS.Enabled = true
	cfg.Security.HSTS.MaxAgeSeconds = 31536000
	cfg.Security.HSTS.IncludeSubdomains = true
	return cfg
}

// Load 生成配置：内置默认值 → 同目录配置文件（config.yaml/yml/json）→ .env 与环境变量。
func Load() Config {
	cfg := Defaults()
	if path := FirstExisting("config.yaml", "config.yml", "config.json"); path != "" {
		_ = loadFromFile(path, &cfg)
	}
	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnv(&cfg, os.Getenv)
	return cfg
}

// LoadFrom 与 Load 相同，但使用显式指定的配置文件；文件不可读或格式错误时返回错误。
func LoadFrom(path string) (Config, error) {
	cfg := Defaults()
	if err := loadFromFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	_ = godotenv.Load()
	applyEnv(&cfg, os.Getenv)
	return cfg, nil
}

// 配置文件格式：YAML 或 JSON。仅非零值会覆盖现有字段。
func loadFromFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var fm fileModel
	if ext == ".yaml" || ext == ".yml" {
		if err := yaml.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else if ext == ".json" || ext == "" {
		if err := json.Unmarshal(b, &fm); err != nil {
			return err
		}
	} else {
		return errors.New("unsupported config file format")
	}
	fm.apply(cfg)
	return nil
}

// applyEnv 使用环境变量覆盖配置；未设置的变量保持原值。
func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("APP_ENV"); v != "" {
		cfg.Env = v
	}
	if v := getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v := getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v, ok := lookup(getenv, "REDIS_ADDR"); ok {
		cfg.Redis.Addr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// lookup 区分“未设置”与显式的 "-"：REDIS_ADDR=- 表示禁用 Redis。
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if v == "-" {
		return "", true
	}
	return v, true
}

// --- 配置文件模型与合并逻辑 ---

type fileModel struct {
	Env      string        `yaml:"env" json:"env"`
	HTTPAddr string        `yaml:"http_addr" json:"http_addr"`
	Database *fileDatabase `yaml:"database" json:"database"`
	Redis    *fileRedis    `yaml:"redis" json:"redis"`
	Limits   *fileLimits   `yaml:"limits" json:"limits"`
	Security *fileSecurity `yaml:"security" json:"security"`
	Log      *fileLog      `yaml:"log" json:"log"`
}

type fileDatabase struct {
	Driver       string `yaml:"driver" json:"driver"`
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	User         string `yaml:"user" json:"user"`
	Password     string `yaml:"password" json:"password"`
	DBName       string `yaml:"db" json:"db"`
	Params       string `yaml:"params" json:"params"`
	Path         string `yaml:"path" json:"path"`
	MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" json:"max_idle_conns"`
}
type fileRedis struct {
	Enable   *bool  `yaml:"enable" json:"enable"`
	Addr     string `yaml:"addr" json:"addr"`
	DB       int    `yaml:"db" json:"db"`
	Password string `yaml:"password" json:"password"`
}
type fileLimits struct {
	WritePerMinute int    `yaml:"write_per_minute" json:"write_per_minute"`
	Window         string `yaml:"window" json:"window"`
}
type fileSecurity struct {
	HSTS struct {
		Enabled           *bool `yaml:"enabled" json:"enabled"`
		MaxAge            int   `yaml:"max_age" json:"max_age"`
		IncludeSubdomains *bool `yaml:"include_subdomains" json:"include_subdomains"`
	} `yaml:"hsts" json:"hsts"`
}
type fileLog struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func (fm *fileModel) apply(cfg *Config) {
	if fm.Env != "" {
		cfg.Env = fm.Env
	}
	if fm.HTTPAddr != "" {
		cfg.HTTPAddr = fm.HTTPAddr
	}
	if fm.Database != nil {
		if fm.Database.Driver != "" {
			cfg.Database.Driver = strings.ToLower(fm.Database.Driver)
		}
		if fm.Database.Host != "" {
			cfg.Database.Host = fm.Database.Host
		}
		if fm.Database.Port != 0 {
			cfg.Database.Port = fm.Database.Port
		}
		if fm.Database.User != "" {
			cfg.Database.User = fm.Database.User
		}
		if fm.Database.Password != "" {
			cfg.Database.Password = fm.Database.Password
		}
		if fm.Database.DBName != "" {
			cfg.Database.DBName = fm.Database.DBName
		}
		if fm.Database.Params != "" {
			cfg.Database.Params = fm.Database.Params
		}
		if fm.Database.Path != "" {
			cfg.Database.Path = fm.Database.Path
		}
		if fm.Database.MaxOpenConns != 0 {
			cfg.Database.MaxOpenConns = fm.Database.MaxOpenConns
		}
		if fm.Database.MaxIdleConns != 0 {
			cfg.Database.MaxIdleConns = fm.Database.MaxIdleConns
		}
	}
	if fm.Redis != nil {
		if fm.Redis.Addr != "" {
			cfg.Redis.Addr = fm.Redis.Addr
		}
		if fm.Redis.Enable != nil && !*fm.Redis.Enable {
			cfg.Redis.Addr = ""
		}
		if fm.Redis.DB != 0 {
			cfg.Redis.DB = fm.Redis.DB
		}
		if fm.Redis.Password != "" {
			cfg.Redis.Password = fm.Redis.Password
		}
	}
	if fm.Limits != nil {
		if fm.Limits.WritePerMinute != 0 {
			cfg.Limits.WritePerMinute = fm.Limits.WritePerMinute
		}
		if fm.Limits.Window != "" {
			if d, err := time.ParseDuration(fm.Limits.Window); err == nil {
				cfg.Limits.Window = d
			}
		}
	}
	if fm.Security != nil {
		if fm.Security.HSTS.Enabled != nil {
			cfg.Security.HSTS.Enabled = *fm.Security.HSTS.Enabled
		}
		if fm.Security.HSTS.MaxAge != 0 {
			cfg.Security.HSTS.MaxAgeSeconds = fm.Security.HSTS.MaxAge
		}
		if fm.Security.HSTS.IncludeSubdomains != nil {
			cfg.Security.HSTS.IncludeSubdomains = *fm.Security.HSTS.IncludeSubdomains
		}
	}
	if fm.Log != nil {
		if fm.Log.Level != "" {
			cfg.Log.Level = fm.Log.Level
		}
		if fm.Log.Format != "" {
			cfg.Log.Format = fm.Log.Format
		}
	}
}

// FirstExisting 按顺序返回第一个存在的文件路径；若都不存在则返回空字符串。
func FirstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
