// Package timex provides a time type with a fixed JSON layout
// Package timex 提供固定 JSON 格式的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout JSON layout of Time // 时间的 JSON 格式
const Layout = "2006-01-02 15:04:05"

// Time wraps time.Time and marshals with Layout in local time
// Time 包装 time.Time，以本地时间按 Layout 序列化
type Time time.Time

func Now() Time {
	return Time(time.Now())
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	if t.IsZero() {
		return ""
	}
	return time.Time(t).Local().Format(Layout)
}

// MarshalJSON zero time marshals as null
// MarshalJSON 零值输出 null
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.String() + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(`"`+Layout+`"`, s, time.Local)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v interface{}) error {
	switch val := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(val)
	default:
		return fmt.Errorf("timex: cannot scan %T into Time", v)
	}
	return nil
}
