package walk

import (
	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              LimitedRangeEnvelope
// ============================================================================

// LimitedRangeEnvelope 有限范围游走信封
type LimitedRangeEnvelope struct {
	// TTL 剩余跳数（>= 1）
	TTL uint32

	// Direction 传播方向
	Direction types.Direction

	// SourcePeer 发起方节点
	SourcePeer types.PeerID

	// SourceServiceName 发起方服务名
	SourceServiceName string

	// SourceServiceParams 发起方服务参数（可选）
	SourceServiceParams *string
}

// Wrap 构造游走信封
//
// ttl < 1 时返回 InvalidRange("ttl")。
func Wrap(ttl uint32, dir types.Direction, sourcePeer types.PeerID, serviceName string, params *string) (*LimitedRangeEnvelope, error) {
	env := &LimitedRangeEnvelope{
		TTL:                 ttl,
		Direction:           dir,
		SourcePeer:          sourcePeer,
		SourceServiceName:   serviceName,
		SourceServiceParams: cloneString(params),
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return env, nil
}

// Validate 校验信封
func (e *LimitedRangeEnvelope) Validate() error {
	if e.TTL < 1 {
		return types.InvalidRange("ttl", e.TTL)
	}
	if !e.Direction.IsValid() {
		return types.UnrecognizedValue("direction", uint8(e.Direction))
	}
	if err := e.SourcePeer.Validate("source_peer"); err != nil {
		return err
	}
	if e.SourceServiceName == "" {
		return types.MissingField("source_service_name")
	}
	return nil
}

// Forward 计算转发到下一跳的信封
//
// TTL 减一后为 0 时返回 nil（终点，不再转发）；
// 否则返回新信封，方向与来源字段原样保留。
func Forward(env *LimitedRangeEnvelope) *LimitedRangeEnvelope {
	if env.TTL <= 1 {
		return nil
	}
	next := *env
	next.TTL = env.TTL - 1
	next.SourceServiceParams = cloneString(env.SourceServiceParams)
	return &next
}

// SameSource 检查两个信封的来源字段是否一致
func (e *LimitedRangeEnvelope) SameSource(other *LimitedRangeEnvelope) bool {
	if e.Direction != other.Direction || e.SourcePeer != other.SourcePeer ||
		e.SourceServiceName != other.SourceServiceName {
		return false
	}
	if (e.SourceServiceParams == nil) != (other.SourceServiceParams == nil) {
		return false
	}
	return e.SourceServiceParams == nil || *e.SourceServiceParams == *other.SourceServiceParams
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
