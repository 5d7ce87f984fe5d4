// Package config 讀寫 skipkv 的 YAML 設定檔
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Hakuto4838/skipkv/skiplist"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v2"
)

// 預設值
const (
	STORE_PATH   = "store/dumpFile"
	MAX_LEVEL    = skiplist.MaxLevel
	SEED         = 1
	TRACE_LEVEL  = "info"
	COLOR        = "auto"
	THREADS      = 1
	INSERT_TIMES = 100000
	SEARCH_TIMES = 100000
	KEY_LENGTH   = 10
	DISTRIBUTION = "uniform"
	ZIPF_S       = 1.07
	ZIPF_V       = 1.0
)

var ErrInvalidConfig = errors.New("invalid config")

// Bench 壓測參數
type Bench struct {
	Threads      int     `yaml:"threads"`
	InsertTimes  int     `yaml:"insert_times"`
	SearchTimes  int     `yaml:"search_times"`
	KeyLength    int     `yaml:"key_length"`
	Distribution string  `yaml:"distribution"`
	ZipfS        float64 `yaml:"zipf_s"`
	ZipfV        float64 `yaml:"zipf_v"`
}

type Config struct {
	StorePath  string `yaml:"store_path"`
	MaxLevel   int    `yaml:"max_level"`
	Seed       int64  `yaml:"seed"`
	TraceLevel string `yaml:"trace_level"`
	Color      string `yaml:"color"`
	Bench      Bench  `yaml:"bench"`
}

func GetDefault() Config {
	var cfg Config
	cfg.StorePath = STORE_PATH
	cfg.MaxLevel = MAX_LEVEL
	cfg.Seed = SEED
	cfg.TraceLevel = TRACE_LEVEL
	cfg.Color = COLOR
	cfg.Bench.Threads = THREADS
	cfg.Bench.InsertTimes = INSERT_TIMES
	cfg.Bench.SearchTimes = SEARCH_TIMES
	cfg.Bench.KeyLength = KEY_LENGTH
	cfg.Bench.Distribution = DISTRIBUTION
	cfg.Bench.ZipfS = ZIPF_S
	cfg.Bench.ZipfV = ZIPF_V
	return cfg
}

// LoadConfig 讀取 filePath。檔案不存在時回傳預設值；
// 內容無法解析或數值不合法時回傳錯誤。
func LoadConfig(filePath string) (*Config, error) {
	cfg := GetDefault()
	if filePath == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", filePath, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, filePath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dump 把設定寫成 YAML
func (cfg *Config) Dump(filePath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0o644)
}

func (cfg *Config) validate() error {
	if cfg.MaxLevel < 0 || cfg.MaxLevel > skiplist.MaxLevel {
		return fmt.Errorf("%w: max_level must be in [0, %d], but %d was given",
			ErrInvalidConfig, skiplist.MaxLevel, cfg.MaxLevel)
	}
	if _, ok := traceLevels[strings.ToLower(cfg.TraceLevel)]; !ok {
		return fmt.Errorf("%w: unknown trace_level %q", ErrInvalidConfig, cfg.TraceLevel)
	}
	switch cfg.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: color must be auto, always or never, but %q was given", ErrInvalidConfig, cfg.Color)
	}

	b := cfg.Bench
	if b.Threads <= 0 {
		return fmt.Errorf("%w: bench threads must be a positive number, but %d was given", ErrInvalidConfig, b.Threads)
	}
	if b.InsertTimes < 0 || b.SearchTimes < 0 {
		return fmt.Errorf("%w: bench operation counts cannot be negative", ErrInvalidConfig)
	}
	if b.KeyLength <= 0 {
		return fmt.Errorf("%w: bench key_length must be a positive number, but %d was given", ErrInvalidConfig, b.KeyLength)
	}
	switch b.Distribution {
	case "uniform":
	case "zipf":
		// math/rand/v2 的 Zipf 要求 s > 1 且 v >= 1
		if b.ZipfS <= 1 || b.ZipfV < 1 {
			return fmt.Errorf("%w: zipf needs s > 1 and v >= 1, got s=%v v=%v", ErrInvalidConfig, b.ZipfS, b.ZipfV)
		}
	default:
		return fmt.Errorf("%w: unknown distribution %q", ErrInvalidConfig, b.Distribution)
	}
	return nil
}

var traceLevels = map[string]tracing.TraceLevel{
	"debug": tracing.LevelDebug,
	"info":  tracing.LevelInfo,
	"error": tracing.LevelError,
}

// Level 回傳 trace_level 對應的 tracing 等級，無法辨識時為 Info
func (cfg *Config) Level() tracing.TraceLevel {
	if lvl, ok := traceLevels[strings.ToLower(cfg.TraceLevel)]; ok {
		return lvl
	}
	return tracing.LevelInfo
}
