package commands

import (
	"fmt"

	"github.com/taoyao-code/meter-codec/internal/protocol/bitfield"
	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// 硬件类型
const (
	HardwareSingleChannel uint8 = 0x01
	HardwareMultiChannel  uint8 = 0x02
)

// 多通道硬件的状态为 2 字节
var multiChannelHardware = map[uint8]bool{
	HardwareMultiChannel: true,
}

var singleChannelStatus = bitfield.MaskTable{
	"isBatteryLow":        0x01,
	"isMagneticInfluence": 0x02,
	"isButtonReleased":    0x04,
	"isConnectionLost":    0x08,
	"isTamper":            0x10,
	"isLeakage":           0x20,
	"isReverseFlow":       0x40,
	"isRebooted":          0x80,
}

var multiChannelStatus = bitfield.MaskTable{
	"isBatteryLow":            0x0001,
	"isConnectionLost":        0x0002,
	"isFirstChannelInactive":  0x0004,
	"isSecondChannelInactive": 0x0008,
	"isThirdChannelInactive":  0x0010,
	"isFourthChannelInactive": 0x0020,
	"isMagneticInfluence":     0x0100,
	"isTamper":                0x0200,
}

// LastEventResponse lastEvent 上行：序号 + 置位的状态标志（按掩码升序）
type LastEventResponse struct {
	Sequence uint8    `json:"sequence" yaml:"sequence"`
	Flags    []string `json:"flags" yaml:"flags"`
}

func statusTable(hw uint8) (bitfield.MaskTable, int) {
	if multiChannelHardware[hw] {
		return multiChannelStatus, 2
	}
	return singleChannelStatus, 1
}

// setFlags 返回置位的标志名
func setFlags(table bitfield.MaskTable, value uint32) []string {
	flags := bitfield.ToFlags(table, value)
	out := make([]string, 0, len(flags))
	for _, name := range table.Names() {
		if flags[name] {
			out = append(out, name)
		}
	}
	return out
}

func flagsValue(table bitfield.MaskTable, names []string) (uint32, error) {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := table[name]; !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownFlag, name)
		}
		set[name] = true
	}
	return bitfield.FromFlags(table, set), nil
}

// lastEvent 的状态宽度取决于硬件类型，解码必须提供上下文
var lastEventResponse = message.Command{
	ID:   IDLastEvent,
	Name: "lastEvent",
	Decode: func(body []byte, ctx *message.Context) (any, error) {
		hw, err := ctx.RequireHardwareType()
		if err != nil {
			return nil, err
		}
		table, width := statusTable(hw)

		b := buffer.From(body, nil)
		seq, err := b.Uint8()
		if err != nil {
			return nil, err
		}
		var status uint32
		if width == 2 {
			v, err := b.Uint16()
			if err != nil {
				return nil, err
			}
			status = uint32(v)
		} else {
			v, err := b.Uint8()
			if err != nil {
				return nil, err
			}
			status = uint32(v)
		}
		return LastEventResponse{Sequence: seq, Flags: setFlags(table, status)}, done(b)
	},
	Encode: encodeLastEvent,
}

// encodeLastEvent 编码时按标志名推断宽度：含多通道专有标志则为 2 字节
func encodeLastEvent(params any) ([]byte, error) {
	p, err := as[LastEventResponse](params)
	if err != nil {
		return nil, err
	}
	if v, err := flagsValue(singleChannelStatus, p.Flags); err == nil {
		return []byte{p.Sequence, byte(v)}, nil
	}
	v, err := flagsValue(multiChannelStatus, p.Flags)
	if err != nil {
		return nil, err
	}
	b := buffer.New(3, nil)
	_ = b.SetUint8(p.Sequence)
	_ = b.SetUint16(uint16(v))
	return b.Data(), nil
}

// EncodeLastEvent 按硬件类型编码 lastEvent
func EncodeLastEvent(p LastEventResponse, hw uint8) ([]byte, error) {
	table, width := statusTable(hw)
	v, err := flagsValue(table, p.Flags)
	if err != nil {
		return nil, err
	}
	b := buffer.New(1+width, nil)
	_ = b.SetUint8(p.Sequence)
	if width == 2 {
		_ = b.SetUint16(uint16(v))
	} else {
		_ = b.SetUint8(uint8(v))
	}
	return b.Data(), nil
}
