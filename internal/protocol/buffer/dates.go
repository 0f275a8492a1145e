package buffer

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/taoyao-code/meter-codec/internal/protocol/bitfield"
)

// EpochYear 压缩日期的年份基准
const EpochYear = 2000

// 压缩日期按大端 16 位字处理：yyyyyyym mmmddddd
var dateFields = bitfield.MustFieldTable(map[string]bitfield.Field{
	"year":  {BitCount: 7, StartBit: 9},
	"month": {BitCount: 4, StartBit: 5},
	"day":   {BitCount: 5, StartBit: 0},
})

// 小时字节：高 3 位小时跨度，低 5 位小时
var hourFields = bitfield.MustFieldTable(map[string]bitfield.Field{
	"hours": {BitCount: 3, StartBit: 5},
	"hour":  {BitCount: 5, StartBit: 0},
})

// Date 日历日期，Year 为完整年份（2000..2127）
type Date struct {
	Year  int `json:"year" yaml:"year"`
	Month int `json:"month" yaml:"month"`
	Day   int `json:"day" yaml:"day"`
}

// DateFromTime 取 t 的 UTC 日期
func DateFromTime(t time.Time) Date {
	t = t.UTC()
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Time 返回该日期 UTC 零点
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Validate 检查是否在可表示范围内；越界的值编码时会被按位截断
func (d Date) Validate() error {
	if d.Year < EpochYear || d.Year > EpochYear+127 {
		return fmt.Errorf("date year %d out of range %d..%d", d.Year, EpochYear, EpochYear+127)
	}
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("date month %d out of range 1..12", d.Month)
	}
	if d.Day < 1 || d.Day > 31 {
		return fmt.Errorf("date day %d out of range 1..31", d.Day)
	}
	return nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Date 读取 2 字节压缩日期
func (b *Buffer) Date() (Date, error) {
	word, err := b.Uint16Order(binary.BigEndian)
	if err != nil {
		return Date{}, err
	}
	f := dateFields.Unpack(uint32(word))
	return Date{Year: EpochYear + int(f["year"]), Month: int(f["month"]), Day: int(f["day"])}, nil
}

// SetDate 写入 2 字节压缩日期
func (b *Buffer) SetDate(d Date) error {
	word := dateFields.Pack(map[string]uint32{
		"year":  uint32(d.Year - EpochYear),
		"month": uint32(d.Month),
		"day":   uint32(d.Day),
	})
	return b.SetUint16Order(uint16(word), binary.BigEndian)
}

// HourByte 小时（0..31）与小时跨度/计数（0..7）
type HourByte struct {
	Hour  int `json:"hour" yaml:"hour"`
	Hours int `json:"hours" yaml:"hours"`
}

func (b *Buffer) HourByte() (HourByte, error) {
	c, err := b.Uint8()
	if err != nil {
		return HourByte{}, err
	}
	f := hourFields.Unpack(uint32(c))
	return HourByte{Hour: int(f["hour"]), Hours: int(f["hours"])}, nil
}

func (b *Buffer) SetHourByte(h HourByte) error {
	v := hourFields.Pack(map[string]uint32{"hour": uint32(h.Hour), "hours": uint32(h.Hours)})
	return b.SetUint8(uint8(v))
}

// DateHours 日期 + 小时字节，共 3 字节
type DateHours struct {
	Date
	HourByte
}

// Time 返回起始小时的 UTC 时间
func (d DateHours) Time() time.Time {
	return d.Date.Time().Add(time.Duration(d.Hour) * time.Hour)
}

func (b *Buffer) DateHours() (DateHours, error) {
	if b.BytesLeft() < 3 {
		return DateHours{}, &OutOfRangeError{Width: 3, Offset: b.offset, Size: len(b.data)}
	}
	d, err := b.Date()
	if err != nil {
		return DateHours{}, err
	}
	h, err := b.HourByte()
	if err != nil {
		return DateHours{}, err
	}
	return DateHours{Date: d, HourByte: h}, nil
}

func (b *Buffer) SetDateHours(d DateHours) error {
	if b.BytesLeft() < 3 {
		return &OutOfRangeError{Width: 3, Offset: b.offset, Size: len(b.data)}
	}
	_ = b.SetDate(d.Date)
	return b.SetHourByte(d.HourByte)
}

// ProfilePeriodsPerDay 负荷曲线每日半小时时段数
const ProfilePeriodsPerDay = 48

// ProfilePeriod 负荷曲线时段：日期 + 半小时时段序号（0..47），共 3 字节
type ProfilePeriod struct {
	Date   Date `json:"date" yaml:"date"`
	Period int  `json:"period" yaml:"period"`
}

// Time 返回时段起点的 UTC 时间
func (p ProfilePeriod) Time() time.Time {
	return p.Date.Time().Add(time.Duration(p.Period) * 30 * time.Minute)
}

func (b *Buffer) ProfilePeriod() (ProfilePeriod, error) {
	if b.BytesLeft() < 3 {
		return ProfilePeriod{}, &OutOfRangeError{Width: 3, Offset: b.offset, Size: len(b.data)}
	}
	d, err := b.Date()
	if err != nil {
		return ProfilePeriod{}, err
	}
	c, err := b.Uint8()
	if err != nil {
		return ProfilePeriod{}, err
	}
	return ProfilePeriod{Date: d, Period: int(c)}, nil
}

func (b *Buffer) SetProfilePeriod(p ProfilePeriod) error {
	if b.BytesLeft() < 3 {
		return &OutOfRangeError{Width: 3, Offset: b.offset, Size: len(b.data)}
	}
	_ = b.SetDate(p.Date)
	return b.SetUint8(uint8(p.Period))
}
