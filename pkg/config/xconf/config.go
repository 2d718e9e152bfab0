package xconf

import "github.com/knadh/koanf/v2"

// Format 配置文件格式
type Format string

const (
	// FormatYAML YAML 格式
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式
	FormatJSON Format = "json"
)

// Config 一份已加载的配置。
//
// 只提供加载、反序列化和重载；其他读取操作直接使用 Client() 返回的 koanf 实例。
type Config interface {
	// Client 返回底层 koanf 实例
	Client() *koanf.Koanf

	// Unmarshal 把 path 下的配置反序列化到 target，path 为空时取整份配置。
	// target 中配置里没有出现的字段保持原值，因此可以先填好默认值再调用。
	Unmarshal(path string, target any) error

	// Reload 重新读取配置文件，并发安全。从字节创建的 Config 返回 [ErrNotReloadable]。
	Reload() error

	// Path 返回配置文件路径，从字节创建时为空
	Path() string

	// Format 返回配置格式
	Format() Format
}
