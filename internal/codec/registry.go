package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/dep2p/go-overlay/internal/protocol/lease"
	"github.com/dep2p/go-overlay/internal/protocol/route"
	"github.com/dep2p/go-overlay/internal/protocol/srdi"
	"github.com/dep2p/go-overlay/internal/protocol/walk"
)

// TypeCode 消息类型码
type TypeCode uint32

// 已知类型码
const (
	TypeRouteQuery    TypeCode = 1
	TypeRouteResponse TypeCode = 2
	TypeEnvelope      TypeCode = 3
	TypeLeaseRequest  TypeCode = 4
	TypeLeaseResponse TypeCode = 5
	TypeSrdi          TypeCode = 6
)

// Message 可编解码的消息
type Message interface {
	Validate() error
}

type registration struct {
	code   TypeCode
	name   string
	encode func(Message) []byte
	decode func([]byte) (Message, error)
}

// Registry 类型码登记表
//
// 非并发安全：应在创建 Codec 之前完成登记。
type Registry struct {
	byCode map[TypeCode]*registration
	byType map[reflect.Type]*registration
}

// NewRegistry 创建空登记表
func NewRegistry() *Registry {
	return &Registry{
		byCode: make(map[TypeCode]*registration),
		byType: make(map[reflect.Type]*registration),
	}
}

// Register 登记一种消息类型
func Register[T Message](r *Registry, code TypeCode, name string, enc func(T) []byte, dec func([]byte) (T, error)) error {
	if _, ok := r.byCode[code]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateCode, code)
	}
	t := reflect.TypeFor[T]()
	if _, ok := r.byType[t]; ok {
		return fmt.Errorf("%w: %s already registered", ErrDuplicateCode, t)
	}

	reg := &registration{
		code:   code,
		name:   name,
		encode: func(m Message) []byte { return enc(m.(T)) },
		decode: func(b []byte) (Message, error) {
			m, err := dec(b)
			if err != nil {
				return nil, err
			}
			return m, nil
		},
	}
	r.byCode[code] = reg
	r.byType[t] = reg
	return nil
}

// RegisterDefaults 登记连接核心的全部消息类型
func RegisterDefaults(r *Registry) error {
	errs := []error{
		Register(r, TypeRouteQuery, "route_query", encodeRouteQuery, decodeRouteQuery),
		Register(r, TypeRouteResponse, "route_response", encodeRouteResponse, decodeRouteResponse),
		Register(r, TypeEnvelope, "limited_range_envelope", encodeEnvelope, decodeEnvelope),
		Register(r, TypeLeaseRequest, "lease_request", encodeLeaseRequest, decodeLeaseRequest),
		Register(r, TypeLeaseResponse, "lease_response", encodeLeaseResponse, decodeLeaseResponse),
		Register(r, TypeSrdi, "srdi", encodeSrdi, decodeSrdi),
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// DefaultRegistry 返回登记了全部默认类型的新登记表
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		panic(err)
	}
	return r
}

// Name 返回类型码对应的名称
func (r *Registry) Name(code TypeCode) (string, bool) {
	reg, ok := r.byCode[code]
	if !ok {
		return "", false
	}
	return reg.name, true
}

// Codes 返回已登记的类型码（升序）
func (r *Registry) Codes() []TypeCode {
	out := make([]TypeCode, 0, len(r.byCode))
	for c := range r.byCode {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) lookup(msg any) (*registration, bool) {
	reg, ok := r.byType[reflect.TypeOf(msg)]
	return reg, ok
}

var (
	_ Message = (*route.RouteQuery)(nil)
	_ Message = (*route.RouteResponse)(nil)
	_ Message = (*walk.LimitedRangeEnvelope)(nil)
	_ Message = (*lease.LeaseRequest)(nil)
	_ Message = (*lease.LeaseResponse)(nil)
	_ Message = (*srdi.Message)(nil)
)
