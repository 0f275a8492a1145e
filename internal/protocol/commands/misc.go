package commands

import (
	"encoding/binary"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// dataSegment 上下行同构，命令体即分段
var dataSegmentCommand = message.Command{
	ID:   IDDataSegment,
	Name: "dataSegment",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		return message.ParseSegment(body)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[message.Segment](params)
		if err != nil {
			return nil, err
		}
		return p.Bytes(), nil
	},
}

// BatteryStatusResponse getBatteryStatus 上行
type BatteryStatusResponse struct {
	Voltage     float32 `json:"voltage" yaml:"voltage"`
	Temperature int8    `json:"temperature" yaml:"temperature"`
	Label       string  `json:"label" yaml:"label"`
}

var getBatteryStatusRequest = emptyCommand(IDGetBatteryStatus, "getBatteryStatus")

// 电压为小端 float32
var getBatteryStatusResponse = message.Command{
	ID:   IDGetBatteryStatus,
	Name: "getBatteryStatus",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, binary.LittleEndian)
		voltage, err := b.Float32()
		if err != nil {
			return nil, err
		}
		temp, err := b.Int8()
		if err != nil {
			return nil, err
		}
		label, err := b.String8()
		if err != nil {
			return nil, err
		}
		return BatteryStatusResponse{Voltage: voltage, Temperature: temp, Label: label}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[BatteryStatusResponse](params)
		if err != nil {
			return nil, err
		}
		b := buffer.New(4+1+1+len(p.Label), binary.LittleEndian)
		_ = b.SetFloat32(p.Voltage)
		_ = b.SetInt8(p.Temperature)
		if err := b.SetString8(p.Label); err != nil {
			return nil, err
		}
		return b.Data(), nil
	},
}
