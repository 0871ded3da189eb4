package overlay

import (
	"fmt"

	"github.com/dep2p/go-overlay/config"
)

// 预设名称常量
const (
	// PresetEdge 边缘节点：内存存储，短超时，小缓存
	PresetEdge = "edge"

	// PresetRendezvous 汇聚节点：持久化租约，更多推荐，更宽松的限流
	PresetRendezvous = "rendezvous"
)

// PresetInfo 预设描述
type PresetInfo struct {
	Name        string
	Description string
}

// AvailablePresets 返回可用预设
func AvailablePresets() []PresetInfo {
	return []PresetInfo{
		{Name: PresetEdge, Description: "edge peer: in-memory leases, short timeouts, small route cache"},
		{Name: PresetRendezvous, Description: "rendezvous peer: persistent leases, more referrals, higher rate limits"},
	}
}

// IsValidPreset 检查预设名是否有效
func IsValidPreset(name string) bool {
	for _, p := range AvailablePresets() {
		if p.Name == name {
			return true
		}
	}
	return false
}

// GetConfigByPreset 返回应用了预设的默认配置
func GetConfigByPreset(name string) (*config.Config, error) {
	if !IsValidPreset(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := config.NewConfig()
	if err := config.ApplyPreset(cfg, name); err != nil {
		return nil, err
	}
	return cfg, nil
}
