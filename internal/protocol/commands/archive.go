package commands

import (
	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// ArchiveDaysRequest getArchiveDays 下行：起始日期 + 天数
type ArchiveDaysRequest struct {
	StartDate buffer.Date `json:"start_date" yaml:"start_date"`
	Days      uint8       `json:"days" yaml:"days"`
}

// ArchiveDaysResponse getArchiveDays 上行：起始日期 + 每日扩展值
type ArchiveDaysResponse struct {
	StartDate buffer.Date `json:"start_date" yaml:"start_date"`
	Values    []uint64    `json:"values" yaml:"values"`
}

// CurrentMCResponse getCurrentMC 上行：通道掩码 + 各通道读数
type CurrentMCResponse struct {
	Channels []buffer.ChannelValue `json:"channels" yaml:"channels"`
}

var getArchiveDaysRequest = message.Command{
	ID:   IDGetArchiveDays,
	Name: "getArchiveDays",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		d, err := b.Date()
		if err != nil {
			return nil, err
		}
		days, err := b.Uint8()
		if err != nil {
			return nil, err
		}
		return ArchiveDaysRequest{StartDate: d, Days: days}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[ArchiveDaysRequest](params)
		if err != nil {
			return nil, err
		}
		if err := p.StartDate.Validate(); err != nil {
			return nil, err
		}
		b := buffer.New(3, nil)
		_ = b.SetDate(p.StartDate)
		_ = b.SetUint8(p.Days)
		return b.Data(), nil
	},
}

var getArchiveDaysResponse = message.Command{
	ID:   IDGetArchiveDays,
	Name: "getArchiveDays",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		d, err := b.Date()
		if err != nil {
			return nil, err
		}
		var values []uint64
		for !b.IsEmpty() {
			v, _ := b.ExtendedValue()
			values = append(values, v)
		}
		return ArchiveDaysResponse{StartDate: d, Values: values}, nil
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[ArchiveDaysResponse](params)
		if err != nil {
			return nil, err
		}
		if err := p.StartDate.Validate(); err != nil {
			return nil, err
		}
		size := 2
		for _, v := range p.Values {
			size += buffer.ExtendedSize(v)
		}
		b := buffer.New(size, nil)
		_ = b.SetDate(p.StartDate)
		for _, v := range p.Values {
			_ = b.SetExtendedValue(v)
		}
		return b.Data(), nil
	},
}

var getCurrentMCRequest = emptyCommand(IDGetCurrentMC, "getCurrentMC")

var getCurrentMCResponse = message.Command{
	ID:   IDGetCurrentMC,
	Name: "getCurrentMC",
	Decode: func(body []byte, _ *message.Context) (any, error) {
		b := buffer.From(body, nil)
		values, err := b.ChannelValues(buffer.ChannelsFull)
		if err != nil {
			return nil, err
		}
		return CurrentMCResponse{Channels: values}, done(b)
	},
	Encode: func(params any) ([]byte, error) {
		p, err := as[CurrentMCResponse](params)
		if err != nil {
			return nil, err
		}
		b := buffer.New(buffer.ChannelValuesSize(p.Channels, buffer.ChannelsFull), nil)
		if err := b.SetChannelValues(p.Channels, buffer.ChannelsFull); err != nil {
			return nil, err
		}
		return b.Data(), nil
	},
}
