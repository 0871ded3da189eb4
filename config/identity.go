package config

import (
	"fmt"
	"strings"
	"unicode"
)

// IdentityConfig 本地节点标识配置
type IdentityConfig struct {
	// PeerID 本地节点 ID（规范字符串）
	// 为空时由 PublicKeyHex 派生
	PeerID string `json:"peer_id,omitempty"`

	// PublicKeyHex 公钥（十六进制），用于派生 PeerID
	PublicKeyHex string `json:"public_key_hex,omitempty"`

	// Endpoints 本地可达端点
	Endpoints []string `json:"endpoints,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}

// Validate 验证身份配置
func (c *IdentityConfig) Validate() error {
	if strings.IndexFunc(c.PeerID, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: identity.peer_id contains whitespace", ErrInvalidConfig)
	}
	for i, ep := range c.Endpoints {
		if ep == "" {
			return fmt.Errorf("%w: identity.endpoints[%d] is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}
