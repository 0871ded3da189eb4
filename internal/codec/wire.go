package codec

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-overlay/pkg/types"
)

// ============================================================================
//                              读取
// ============================================================================

// field 一个已解析的字段
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

// parseFields 逐个解析字段并交给 fn
//
// 只处理 varint 与 bytes 两种线类型，其余类型的字段被跳过。
func parseFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return malformed(protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func (f field) wantType(t protowire.Type) error {
	if f.typ != t {
		return fmt.Errorf("%w: field %d has wire type %d, want %d", ErrMalformed, f.num, f.typ, t)
	}
	return nil
}

func (f field) bytes() ([]byte, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return nil, err
	}
	return append([]byte(nil), f.b...), nil
}

func (f field) str() (string, error) {
	if err := f.wantType(protowire.BytesType); err != nil {
		return "", err
	}
	return string(f.b), nil
}

func (f field) varint() (uint64, error) {
	if err := f.wantType(protowire.VarintType); err != nil {
		return 0, err
	}
	return f.v, nil
}

func (f field) varint32() (uint32, error) {
	v, err := f.varint()
	if err != nil {
		return 0, err
	}
	if v > 0xFFFFFFFF {
		return 0, fmt.Errorf("%w: field %d overflows uint32", ErrMalformed, f.num)
	}
	return uint32(v), nil
}

func (f field) millis(name string) (time.Duration, error) {
	v, err := f.varint()
	if err != nil {
		return 0, err
	}
	return types.DurationFromMillis(name, protowire.DecodeZigZag(v))
}

// ============================================================================
//                              写入
// ============================================================================

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// appendMessage 总是写出字段，空消息体同样表示"存在"
func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, body)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendMillis(b []byte, num protowire.Number, d time.Duration) []byte {
	return appendVarint(b, num, protowire.EncodeZigZag(d.Milliseconds()))
}
