package frame

import (
	"github.com/taoyao-code/meter-codec/internal/protocol/checksum"
)

// CRC 帧校验；Expected 为帧内携带值，解析失败时为 nil
type CRC struct {
	Expected *uint16 `json:"expected,omitempty"`
	Actual   uint16  `json:"actual"`
}

// Frame 链路层帧
type Frame struct {
	Content []byte `json:"content"`
	Wire    []byte `json:"wire"`
	CRC     CRC    `json:"crc"`
	Valid   bool   `json:"valid"`
}

type options struct {
	sevenBit bool
}

// Option 帧编解码选项
type Option func(*options)

// WithSevenBit 7 位传输模式：高位置位的字节额外转义
func WithSevenBit() Option {
	return func(o *options) { o.sevenBit = true }
}

// WithSevenBitMode 按开关选择 7 位模式，便于从配置传入
func WithSevenBitMode(enabled bool) Option {
	return func(o *options) { o.sevenBit = enabled }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// minWireLen 起止标志 + 2 字节 CRC
const minWireLen = 2 + checksum.CRC16Size

// Encode 组帧：content ++ crc16 -> 填充 -> 首尾加标志。空内容返回空帧。
func Encode(content []byte, opts ...Option) Frame {
	if len(content) == 0 {
		return Frame{Content: []byte{}, Wire: []byte{}}
	}
	o := buildOptions(opts)

	crc := checksum.CRC16(content)
	body := checksum.AppendCRC16(append(make([]byte, 0, len(content)+checksum.CRC16Size), content...))
	stuffed := Stuff(body, o.sevenBit)

	wire := make([]byte, 0, len(stuffed)+2)
	wire = append(wire, Marker)
	wire = append(wire, stuffed...)
	wire = append(wire, Marker)

	expected := crc
	return Frame{
		Content: append([]byte(nil), content...),
		Wire:    wire,
		CRC:     CRC{Expected: &expected, Actual: crc},
		Valid:   true,
	}
}

// invalid 解析失败时的封闭结果
func invalid(wire []byte) Frame {
	return Frame{Content: []byte{}, Wire: append([]byte{}, wire...)}
}

// Decode 拆帧。标志缺失、长度不足、转义残缺均返回 Valid=false 的空内容帧，不返回错误。
func Decode(wire []byte, opts ...Option) Frame {
	if len(wire) < minWireLen || wire[0] != Marker || wire[len(wire)-1] != Marker {
		return invalid(wire)
	}
	o := buildOptions(opts)

	body, err := Unstuff(wire[1:len(wire)-1], o.sevenBit)
	if err != nil {
		return invalid(wire)
	}
	content, expected, ok := checksum.SplitCRC16(body)
	if !ok {
		return invalid(wire)
	}
	actual := checksum.CRC16(content)
	return Frame{
		Content: content,
		Wire:    append([]byte{}, wire...),
		CRC:     CRC{Expected: &expected, Actual: actual},
		Valid:   expected == actual,
	}
}
