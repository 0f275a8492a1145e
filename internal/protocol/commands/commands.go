// Package commands 参考命令集：通过命令表契约注册的少量真实命令，
// 供服务层与往返测试使用。
package commands

import (
	"errors"
	"fmt"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// 命令 id
const (
	IDSetTime          uint16 = 0x02
	IDGetArchiveDays   uint16 = 0x06
	IDGetTime          uint16 = 0x07
	IDLastEvent        uint16 = 0x0C
	IDGetCurrentMC     uint16 = 0x18
	IDDataSegment      uint16 = 0x1E
	IDGetBatteryStatus uint16 = 0x0102
)

var (
	ErrParams      = errors.New("unexpected params type")
	ErrBodyLength  = errors.New("unexpected body length")
	ErrTrailing    = errors.New("trailing bytes after command body")
	ErrUnknownFlag = errors.New("unknown status flag")
)

// Empty 无参数命令
type Empty struct{}

// definition 命令定义与其参数类型
type definition struct {
	cmd    message.Command
	params func() any
}

var downlink = []definition{
	{getTimeRequest, func() any { return new(Empty) }},
	{setTimeRequest, func() any { return new(SetTimeRequest) }},
	{getArchiveDaysRequest, func() any { return new(ArchiveDaysRequest) }},
	{getCurrentMCRequest, func() any { return new(Empty) }},
	{dataSegmentCommand, func() any { return new(message.Segment) }},
	{getBatteryStatusRequest, func() any { return new(Empty) }},
}

var uplink = []definition{
	{getTimeResponse, func() any { return new(TimeResponse) }},
	{setTimeResponse, func() any { return new(StatusResponse) }},
	{lastEventResponse, func() any { return new(LastEventResponse) }},
	{getArchiveDaysResponse, func() any { return new(ArchiveDaysResponse) }},
	{getCurrentMCResponse, func() any { return new(CurrentMCResponse) }},
	{dataSegmentCommand, func() any { return new(message.Segment) }},
	{getBatteryStatusResponse, func() any { return new(BatteryStatusResponse) }},
}

// Register 将参考命令注册到 ts
func Register(ts *message.Tables) error {
	for _, d := range downlink {
		if err := ts.Downlink.Register(d.cmd); err != nil {
			return err
		}
	}
	for _, d := range uplink {
		if err := ts.Uplink.Register(d.cmd); err != nil {
			return err
		}
	}
	return nil
}

// NewTables 返回已注册参考命令的命令表
func NewTables() *message.Tables {
	ts := message.NewTables()
	if err := Register(ts); err != nil {
		panic(err)
	}
	return ts
}

// NewParams 返回命令参数类型的零值指针，用于从 JSON/YAML 反序列化
func NewParams(dir message.Direction, id uint16) (any, bool) {
	defs := downlink
	if dir == message.Uplink {
		defs = uplink
	}
	for _, d := range defs {
		if d.cmd.ID == id {
			return d.params(), true
		}
	}
	return nil, false
}

// as 接受 T 或 *T
func as[T any](params any) (T, error) {
	switch v := params.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: want %T, got %T", ErrParams, zero, params)
}

// done 命令体须恰好读完
func done(b *buffer.Buffer) error {
	if !b.IsEmpty() {
		return fmt.Errorf("%w: %d bytes", ErrTrailing, b.BytesLeft())
	}
	return nil
}

func decodeEmpty(body []byte, _ *message.Context) (any, error) {
	if len(body) != 0 {
		return nil, fmt.Errorf("%w: want 0, got %d", ErrBodyLength, len(body))
	}
	return Empty{}, nil
}

func encodeEmpty(params any) ([]byte, error) {
	if params == nil {
		return []byte{}, nil
	}
	if _, err := as[Empty](params); err != nil {
		return nil, err
	}
	return []byte{}, nil
}

func emptyCommand(id uint16, name string) message.Command {
	return message.Command{ID: id, Name: name, Decode: decodeEmpty, Encode: encodeEmpty}
}
