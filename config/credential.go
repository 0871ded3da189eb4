package config

import (
	"encoding/hex"
	"fmt"
)

// CredentialConfig 凭证配置
type CredentialConfig struct {
	// KeyHex 凭证 MAC 密钥（32 字节十六进制）
	// 为空时不签发凭证
	KeyHex string `json:"key_hex,omitempty"`
}

// DefaultCredentialConfig 返回默认凭证配置
func DefaultCredentialConfig() CredentialConfig {
	return CredentialConfig{}
}

// Key 返回解码后的密钥
func (c *CredentialConfig) Key() ([]byte, error) {
	if c.KeyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.KeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: credential.key_hex: %v", ErrInvalidConfig, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: credential.key_hex must decode to 32 bytes", ErrInvalidConfig)
	}
	return key, nil
}

// Validate 验证凭证配置
func (c *CredentialConfig) Validate() error {
	_, err := c.Key()
	return err
}
