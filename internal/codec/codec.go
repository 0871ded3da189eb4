package codec

import (
	"fmt"
	"reflect"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/internal/core/metrics"
	"github.com/dep2p/go-overlay/pkg/interfaces"
	"github.com/dep2p/go-overlay/pkg/lib/log"
	"github.com/dep2p/go-overlay/pkg/types"
)

var logger = log.Logger("codec")

// DefaultMaxMessageSize 默认消息大小上限
const DefaultMaxMessageSize = 64 << 10

// 外层帧字段
const (
	frameType protowire.Number = 1
	frameBody protowire.Number = 2
)

// Codec 线上编解码器
type Codec struct {
	registry *Registry
	maxSize  int
	metrics  *metrics.Metrics
}

var _ interfaces.Codec = (*Codec)(nil)

// Option 编解码器选项
type Option func(*Codec)

// WithMaxMessageSize 设置消息大小上限
func WithMaxMessageSize(n int) Option {
	return func(c *Codec) {
		c.maxSize = n
	}
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Codec) {
		c.metrics = m
	}
}

// New 创建编解码器
func New(reg *Registry, opts ...Option) *Codec {
	c := &Codec{registry: reg, maxSize: DefaultMaxMessageSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Encode 校验并编码一条消息
func (c *Codec) Encode(msg any) ([]byte, error) {
	reg, ok := c.registry.lookup(msg)
	if !ok || reflect.ValueOf(msg).IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrUnregistered, msg)
	}
	m := msg.(Message)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("encode %s: %w", reg.name, err)
	}

	body := reg.encode(m)
	out := make([]byte, 0, len(body)+8)
	out = appendVarint(out, frameType, uint64(reg.code))
	out = appendMessage(out, frameBody, body)
	if len(out) > c.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(out), c.maxSize)
	}
	return out, nil
}

// Decode 解码并校验一条消息
//
// 返回值是具体消息类型的指针，例如 *route.RouteQuery。
func (c *Codec) Decode(data []byte) (any, error) {
	if len(data) > c.maxSize {
		c.metrics.ObserveDecode("unknown", ErrMessageTooLarge)
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), c.maxSize)
	}

	code, body, err := parseFrame(data)
	if err != nil {
		c.metrics.ObserveDecode("unknown", err)
		return nil, err
	}
	reg, ok := c.registry.byCode[code]
	if !ok {
		err := types.UnrecognizedValue("type", uint32(code))
		c.metrics.ObserveDecode("unknown", err)
		return nil, err
	}

	msg, err := reg.decode(body)
	if err == nil {
		err = msg.Validate()
	}
	c.metrics.ObserveDecode(reg.name, err)
	if err != nil {
		logger.Debug("丢弃非法消息", "type", reg.name, "error", err)
		return nil, fmt.Errorf("decode %s: %w", reg.name, err)
	}
	return msg, nil
}

// DecodeAs 解码并断言为期望类型
func DecodeAs[T Message](c *Codec, data []byte) (T, error) {
	var zero T
	msg, err := c.Decode(data)
	if err != nil {
		return zero, err
	}
	m, ok := msg.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrMalformed, msg, zero)
	}
	return m, nil
}

func parseFrame(data []byte) (TypeCode, []byte, error) {
	var (
		code    uint32
		hasCode bool
		body    []byte
	)
	err := parseFields(data, func(f field) error {
		switch f.num {
		case frameType:
			v, err := f.varint32()
			if err != nil {
				return err
			}
			code, hasCode = v, true
		case frameBody:
			if err := f.wantType(protowire.BytesType); err != nil {
				return err
			}
			body = f.b
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	if !hasCode || code == 0 {
		return 0, nil, types.MissingField("type")
	}
	return TypeCode(code), body, nil
}
