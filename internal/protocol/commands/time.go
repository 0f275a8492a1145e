package commands

import (
	"time"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// 设备时间以 2000-01-01 UTC 起的秒数表示
var timeEpoch = time.Date(buffer.EpochYear, 1, 1, 0, 0, 0, 0, time.UTC)

// TimeResponse getTime 上行
type TimeResponse struct {
	Seconds uint32 `json:"seconds" yaml:"seconds"`
}

func (r TimeResponse) Time() time.Time {
	return timeEpoch.Add(time.Duration(r.Seconds) * time.Second)
}

// SetTimeRequest setTime 下行：序号 + 时间偏移秒数
type SetTimeRequest struct {
	Sequence uint8 `json:"sequence" yaml:"sequence"`
	Seconds  int32 `json:"seconds" yaml:"seconds"`
}

// StatusResponse 单字节状态应答
type StatusResponse struct {
	Status bool `json:"status" yaml:"status"`
}

var getTimeRequest = emptyCommand(IDGetTime, "getTime")

var getTimeResponse = message.Command{
	ID:   IDGetTime,
	Name: "getTime",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		v, err := b.Uint32()
		if err != nil {
			return nil, err
		}
		return TimeResponse{Seconds: v}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[TimeResponse](params)
		if err != nil {
			return nil, err
		}
		b := buffer.New(4, nil)
		_ = b.SetUint32(p.Seconds)
		return b.Data(), nil
	},
}

var setTimeRequest = message.Command{
	ID:   IDSetTime,
	Name: "setTime",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		seq, err := b.Uint8()
		if err != nil {
			return nil, err
		}
		sec, err := b.Int32()
		if err != nil {
			return nil, err
		}
		return SetTimeRequest{Sequence: seq, Seconds: sec}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[SetTimeRequest](params)
		if err != nil {
			return nil, err
		}
		b := buffer.New(5, nil)
		_ = b.SetUint8(p.Sequence)
		_ = b.SetInt32(p.Seconds)
		return b.Data(), nil
	},
}

var setTimeResponse = message.Command{
	ID:   IDSetTime,
	Name: "setTime",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		v, err := b.Uint8()
		if err != nil {
			return nil, err
		}
		return StatusResponse{Status: v != 0}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[StatusResponse](params)
		if err != nil {
			return nil, err
		}
		if p.Status {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	},
}
