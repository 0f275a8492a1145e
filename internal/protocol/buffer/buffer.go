package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrOutOfRange 读写越过缓冲区边界
	ErrOutOfRange = errors.New("buffer out of range")
	// ErrStringTooLong 字符串长度超过单字节长度前缀
	ErrStringTooLong = errors.New("string longer than 255 bytes")
)

// OutOfRangeError 越界详情：请求宽度与当前游标
type OutOfRangeError struct {
	Width  int
	Offset int
	Size   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("buffer out of range: need %d bytes at offset %d, size %d", e.Width, e.Offset, e.Size)
}

// Is 使 errors.Is(err, ErrOutOfRange) 成立
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

// Buffer 固定容量字节缓冲区，带读写游标与默认字节序。
// 每次编解码独占一个实例，非并发安全。
type Buffer struct {
	data   []byte
	offset int
	order  binary.ByteOrder
}

// New 创建 size 字节的零值缓冲区；order 为空时默认大端
func New(size int, order binary.ByteOrder) *Buffer {
	if order == nil {
		order = binary.BigEndian
	}
	return &Buffer{data: make([]byte, size), order: order}
}

// From 以调用方数据的副本创建缓冲区，游标位于 0
func From(data []byte, order binary.ByteOrder) *Buffer {
	b := New(len(data), order)
	copy(b.data, data)
	return b
}

// Size 缓冲区总长度
func (b *Buffer) Size() int { return len(b.data) }

// Offset 当前游标位置
func (b *Buffer) Offset() int { return b.offset }

// BytesLeft 游标之后剩余字节数
func (b *Buffer) BytesLeft() int { return len(b.data) - b.offset }

// IsEmpty 是否已无剩余字节
func (b *Buffer) IsEmpty() bool { return b.BytesLeft() == 0 }

// Order 默认字节序
func (b *Buffer) Order() binary.ByteOrder { return b.order }

// Data 返回整个底层数组的副本
func (b *Buffer) Data() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// BytesToOffset 返回 [0, offset) 的副本，即实际写入的部分
func (b *Buffer) BytesToOffset() []byte {
	out := make([]byte, b.offset)
	copy(out, b.data[:b.offset])
	return out
}

// Seek 移动游标到 pos
func (b *Buffer) Seek(pos int) error {
	if pos < 0 || pos > len(b.data) {
		return &OutOfRangeError{Width: pos - b.offset, Offset: b.offset, Size: len(b.data)}
	}
	b.offset = pos
	return nil
}

// take 校验并返回下 n 字节的切片，成功后游标前移 n
func (b *Buffer) take(n int) ([]byte, error) {
	if n < 0 || b.offset+n > len(b.data) {
		return nil, &OutOfRangeError{Width: n, Offset: b.offset, Size: len(b.data)}
	}
	p := b.data[b.offset : b.offset+n]
	b.offset += n
	return p, nil
}

// PeekUint8 读取当前字节但不移动游标
func (b *Buffer) PeekUint8() (uint8, error) {
	if b.offset >= len(b.data) {
		return 0, &OutOfRangeError{Width: 1, Offset: b.offset, Size: len(b.data)}
	}
	return b.data[b.offset], nil
}

func (b *Buffer) Uint8() (uint8, error) {
	p, err := b.take(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) SetUint8(v uint8) error {
	p, err := b.take(1)
	if err != nil {
		return err
	}
	p[0] = v
	return nil
}

func (b *Buffer) Int8() (int8, error) {
	v, err := b.Uint8()
	return int8(v), err
}

func (b *Buffer) SetInt8(v int8) error { return b.SetUint8(uint8(v)) }

func (b *Buffer) Uint16() (uint16, error) { return b.Uint16Order(b.order) }

// Uint16Order 按指定字节序读取
func (b *Buffer) Uint16Order(order binary.ByteOrder) (uint16, error) {
	p, err := b.take(2)
	if err != nil {
		return 0, err
	}
	return order.Uint16(p), nil
}

func (b *Buffer) SetUint16(v uint16) error { return b.SetUint16Order(v, b.order) }

func (b *Buffer) SetUint16Order(v uint16, order binary.ByteOrder) error {
	p, err := b.take(2)
	if err != nil {
		return err
	}
	order.PutUint16(p, v)
	return nil
}

func (b *Buffer) Int16() (int16, error) { return b.Int16Order(b.order) }

func (b *Buffer) Int16Order(order binary.ByteOrder) (int16, error) {
	v, err := b.Uint16Order(order)
	return int16(v), err
}

func (b *Buffer) SetInt16(v int16) error { return b.SetUint16Order(uint16(v), b.order) }

func (b *Buffer) SetInt16Order(v int16, order binary.ByteOrder) error {
	return b.SetUint16Order(uint16(v), order)
}

func (b *Buffer) Uint32() (uint32, error) { return b.Uint32Order(b.order) }

func (b *Buffer) Uint32Order(order binary.ByteOrder) (uint32, error) {
	p, err := b.take(4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(p), nil
}

func (b *Buffer) SetUint32(v uint32) error { return b.SetUint32Order(v, b.order) }

func (b *Buffer) SetUint32Order(v uint32, order binary.ByteOrder) error {
	p, err := b.take(4)
	if err != nil {
		return err
	}
	order.PutUint32(p, v)
	return nil
}

func (b *Buffer) Int32() (int32, error) { return b.Int32Order(b.order) }

func (b *Buffer) Int32Order(order binary.ByteOrder) (int32, error) {
	v, err := b.Uint32Order(order)
	return int32(v), err
}

func (b *Buffer) SetInt32(v int32) error { return b.SetUint32Order(uint32(v), b.order) }

func (b *Buffer) SetInt32Order(v int32, order binary.ByteOrder) error {
	return b.SetUint32Order(uint32(v), order)
}

// Float32 IEEE-754 单精度
func (b *Buffer) Float32() (float32, error) { return b.Float32Order(b.order) }

func (b *Buffer) Float32Order(order binary.ByteOrder) (float32, error) {
	v, err := b.Uint32Order(order)
	return math.Float32frombits(v), err
}

func (b *Buffer) SetFloat32(v float32) error { return b.SetFloat32Order(v, b.order) }

func (b *Buffer) SetFloat32Order(v float32, order binary.ByteOrder) error {
	return b.SetUint32Order(math.Float32bits(v), order)
}

// Bytes 读取 n 个原始字节（返回副本）
func (b *Buffer) Bytes(n int) ([]byte, error) {
	p, err := b.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

// SetBytes 写入原始字节
func (b *Buffer) SetBytes(data []byte) error {
	p, err := b.take(len(data))
	if err != nil {
		return err
	}
	copy(p, data)
	return nil
}

// String8 读取长度前缀字符串：1 字节长度 + 原始字节
func (b *Buffer) String8() (string, error) {
	start := b.offset
	n, err := b.Uint8()
	if err != nil {
		return "", err
	}
	p, err := b.take(int(n))
	if err != nil {
		b.offset = start
		return "", err
	}
	return string(p), nil
}

// SetString8 写入长度前缀字符串
func (b *Buffer) SetString8(s string) error {
	if len(s) > math.MaxUint8 {
		return ErrStringTooLong
	}
	if b.offset+1+len(s) > len(b.data) {
		return &OutOfRangeError{Width: 1 + len(s), Offset: b.offset, Size: len(b.data)}
	}
	_ = b.SetUint8(uint8(len(s)))
	return b.SetBytes([]byte(s))
}
