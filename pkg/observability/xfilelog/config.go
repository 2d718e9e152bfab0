package xfilelog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/omeyang/xlogwriter/pkg/config/xconf"
)

// 配置默认值
const (
	// DefaultFilename 默认日志文件名，位于系统临时目录下
	DefaultFilename = "xfilelog.log"

	// DefaultMaxFileSize 默认按大小轮转阈值（MB）
	DefaultMaxFileSize = 2
)

// DefaultLevels 默认记录的级别
var DefaultLevels = []string{"debug", "info", "warn", "error"}

// Config 文件日志配置，可从 YAML 或 JSON 文件加载：
//
//	filename: /var/log/app/app.log
//	max_file_size: 100
//	compression: true
//	rotate_by_day: true
//	level: [info, warn, error]
//	show_std: false
type Config struct {
	// Filename 活动日志文件路径
	Filename string `koanf:"filename"`

	// MaxFileSize 按大小轮转阈值（十进制 MB），0 表示不按大小轮转
	MaxFileSize int64 `koanf:"max_file_size"`

	// Compression 是否 gzip 压缩轮转出的段
	Compression bool `koanf:"compression"`

	// RotateByDay 是否按天轮转
	RotateByDay bool `koanf:"rotate_by_day"`

	// Level 写入文件的级别列表，空表示全部
	Level []string `koanf:"level"`

	// ShowStd 是否同时把每条日志打印到标准输出
	ShowStd bool `koanf:"show_std"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Filename:    filepath.Join(os.TempDir(), DefaultFilename),
		MaxFileSize: DefaultMaxFileSize,
		Compression: true,
		RotateByDay: true,
		Level:       slices.Clone(DefaultLevels),
		ShowStd:     true,
	}
}

// Validate 检查配置
func (c Config) Validate() error {
	if c.Filename == "" {
		return fmt.Errorf("%w: empty filename", ErrInvalidConfig)
	}
	if c.MaxFileSize < 0 {
		return fmt.Errorf("%w: max_file_size %d < 0", ErrInvalidConfig, c.MaxFileSize)
	}
	if _, err := ParseLevels(c.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Levels 返回 Level 列表对应的掩码，列表非法时返回全部级别
func (c Config) Levels() Level {
	mask, err := ParseLevels(c.Level)
	if err != nil {
		return LevelAll
	}
	return mask
}

// LoadConfig 从 YAML 或 JSON 文件加载配置，按扩展名识别格式。
//
// path 为空时返回默认配置。文件中没有出现的键保持默认值；
// 值按弱类型转换（"5" -> 5，"true" -> true）。
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	cfg, err := xconf.New(path)
	if err != nil {
		return DefaultConfig(), err
	}
	return decodeConfig(cfg)
}

// decodeConfig 把已加载的配置解到默认值之上并校验
func decodeConfig(src xconf.Config) (Config, error) {
	cfg := DefaultConfig()
	// 列表不与默认值合并：文件里给了 level 就只用文件里的
	cfg.Level = nil
	if err := src.Unmarshal("", &cfg); err != nil {
		return DefaultConfig(), err
	}
	if !src.Client().Exists("level") {
		cfg.Level = slices.Clone(DefaultLevels)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}
