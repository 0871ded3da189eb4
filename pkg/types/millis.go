package types

import (
	"math"
	"time"
)

// MaxMillis 能无损换算为 time.Duration 的最大毫秒数
const MaxMillis = math.MaxInt64 / int64(time.Millisecond)

// DurationFromMillis 把线上的毫秒数换算为时长
//
// 超出 time.Duration 表示范围的值返回 InvalidRange，不做截断。
func DurationFromMillis(field string, ms int64) (time.Duration, error) {
	if ms > MaxMillis || ms < -MaxMillis {
		return 0, InvalidRange(field, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// CheckMillis 要求时长是整毫秒，否则编码后无法还原
func CheckMillis(field string, d time.Duration) error {
	if d%time.Millisecond != 0 {
		return InvalidRange(field, d.String())
	}
	return nil
}
