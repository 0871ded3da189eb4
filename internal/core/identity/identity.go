package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/dep2p/go-overlay/config"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("core/identity")

// Local 本地节点标识
type Local struct {
	id        types.PeerID
	endpoints []string
	ephemeral bool
}

// New 由 PeerID 和端点创建本地标识
func New(id types.PeerID, endpoints ...string) (*Local, error) {
	if err := id.Validate("identity.peer_id"); err != nil {
		return nil, err
	}
	l := &Local{id: id, endpoints: append([]string(nil), endpoints...)}
	if _, err := l.route(); err != nil {
		return nil, err
	}
	return l, nil
}

// FromConfig 从身份配置创建本地标识
func FromConfig(cfg config.IdentityConfig) (*Local, error) {
	switch {
	case cfg.PeerID != "":
		return New(types.PeerID(cfg.PeerID), cfg.Endpoints...)
	case cfg.PublicKeyHex != "":
		pub, err := hex.DecodeString(cfg.PublicKeyHex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
		}
		id, err := types.PeerIDFromPublicKey(pub)
		if err != nil {
			return nil, err
		}
		return New(id, cfg.Endpoints...)
	default:
		pub, _, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		id, err := types.PeerIDFromPublicKey(pub)
		if err != nil {
			return nil, err
		}
		l, err := New(id, cfg.Endpoints...)
		if err != nil {
			return nil, err
		}
		l.ephemeral = true
		logger.Info("未配置身份，使用临时 PeerID", "peer", id.ShortString())
		return l, nil
	}
}

// PeerID 返回本地 PeerID
func (l *Local) PeerID() types.PeerID {
	return l.id
}

// Ephemeral 是否为临时生成的标识
func (l *Local) Ephemeral() bool {
	return l.ephemeral
}

// AccessPoint 返回本地接入点
func (l *Local) AccessPoint() types.AccessPoint {
	return types.NewAccessPoint(l.id, l.endpoints...)
}

// SelfRoute 返回到本地节点的直连路由
func (l *Local) SelfRoute() *types.Route {
	r, _ := l.route()
	return &r
}

func (l *Local) route() (types.Route, error) {
	return types.NewRoute(l.id, l.AccessPoint(), nil)
}

// SelfRouteOrNil 同 SelfRoute，l 为 nil 时返回 nil
func (l *Local) SelfRouteOrNil() *types.Route {
	if l == nil {
		return nil
	}
	return l.SelfRoute()
}
