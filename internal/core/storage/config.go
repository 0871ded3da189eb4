package storage

import (
	"fmt"

	"github.com/dep2p/go-overlay/config"
)

// Config 存储配置
type Config struct {
	// Path BadgerDB 目录
	Path string

	// InMemory 仅使用内存
	InMemory bool

	// SyncWrites 每次写入同步到磁盘
	SyncWrites bool
}

// ConfigFromUnified 从统一配置创建存储配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return Config{InMemory: true}
	}
	return Config{
		Path:       cfg.Storage.DBPath(),
		InMemory:   cfg.Storage.InMemory,
		SyncWrites: cfg.Storage.SyncWrites,
	}
}

// Validate 验证配置
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("%w: path required unless in-memory", ErrInvalidConfig)
	}
	return nil
}
