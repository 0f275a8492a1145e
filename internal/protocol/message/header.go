package message

import (
	"fmt"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
)

// MaxCommandID 两字节 id 可表示的最大值
const MaxCommandID = 0x7FFF

const (
	idExtendedFlag = 0x80
	idLowMask      = 0x7F
	maxBodySize    = 0xFF
)

// Header 命令头：1~2 字节 id + 1 字节体长度
type Header struct {
	ID         uint16 `json:"id"`
	HeaderSize int    `json:"header_size"`
	BodySize   int    `json:"body_size"`
}

// NewHeader 根据 id 与体长度构造命令头
func NewHeader(id uint16, bodySize int) (Header, error) {
	if id > MaxCommandID {
		return Header{}, fmt.Errorf("%w: 0x%X", ErrCommandIDRange, id)
	}
	if bodySize < 0 || bodySize > maxBodySize {
		return Header{}, fmt.Errorf("%w: %d", ErrBodyTooLarge, bodySize)
	}
	return Header{ID: id, HeaderSize: idSize(id) + 1, BodySize: bodySize}, nil
}

func idSize(id uint16) int {
	if id < idExtendedFlag {
		return 1
	}
	return 2
}

// Bytes 序列化命令头
func (h Header) Bytes() []byte {
	if h.ID < idExtendedFlag {
		return []byte{byte(h.ID), byte(h.BodySize)}
	}
	return []byte{idExtendedFlag | byte(h.ID&idLowMask), byte(h.ID >> 7), byte(h.BodySize)}
}

// ParseHeader 解析 data 头部的命令头
func ParseHeader(data []byte) (Header, error) {
	return readHeader(buffer.From(data, nil))
}

// readHeader 从游标处读取命令头；失败时游标不动
func readHeader(b *buffer.Buffer) (Header, error) {
	start := b.Offset()
	first, err := b.Uint8()
	if err != nil {
		return Header{}, err
	}
	id := uint16(first)
	if first&idExtendedFlag != 0 {
		second, err := b.Uint8()
		if err != nil {
			_ = b.Seek(start)
			return Header{}, err
		}
		id = uint16(first&idLowMask) | uint16(second)<<7
	}
	size, err := b.Uint8()
	if err != nil {
		_ = b.Seek(start)
		return Header{}, err
	}
	return Header{ID: id, HeaderSize: b.Offset() - start, BodySize: int(size)}, nil
}
