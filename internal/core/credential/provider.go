package credential

import (
	"crypto/subtle"
	"fmt"

	"lukechampine.com/blake3"

	"github.com/dep2p/go-overlay/pkg/interfaces"
)

// KeySize 密钥长度
const KeySize = 32

// MACSize 凭证长度
const MACSize = 32

// Provider BLAKE3 keyed hash 凭证提供者
type Provider struct {
	key []byte
}

var _ interfaces.CredentialProvider = (*Provider)(nil)

// New 创建凭证提供者，key 为空表示不签发凭证
func New(key []byte) (*Provider, error) {
	if len(key) == 0 {
		return &Provider{}, nil
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKey, len(key))
	}
	k := make([]byte, KeySize)
	copy(k, key)
	return &Provider{key: k}, nil
}

// Enabled 是否配置了密钥
func (p *Provider) Enabled() bool {
	return len(p.key) == KeySize
}

// Sign 为数据签发凭证
func (p *Provider) Sign(data []byte) ([]byte, error) {
	if !p.Enabled() {
		return nil, nil
	}
	return p.mac(data), nil
}

// Verify 校验凭证
func (p *Provider) Verify(data, credential []byte) bool {
	if !p.Enabled() {
		return len(credential) == 0
	}
	if len(credential) != MACSize {
		return false
	}
	return subtle.ConstantTimeCompare(p.mac(data), credential) == 1
}

func (p *Provider) mac(data []byte) []byte {
	h := blake3.New(MACSize, p.key)
	h.Write(data)
	return h.Sum(nil)
}
