package buffer

import (
	"errors"
	"sort"
)

// 通道掩码：每字节 bits 个数据位（低位在前）+ 紧邻其上的续位，
// 第 k 字节第 p 位置位表示通道 k*bits+p。
const (
	ChannelsFull    = 7
	ChannelsReduced = 4
)

var (
	ErrEmptyChannels   = errors.New("channel list is empty")
	ErrInvalidChannels = errors.New("channel list must be ascending, unique and non-negative")
	ErrChannelBits     = errors.New("channel bits per byte must be 4 or 7")
)

func checkChannelBits(bits int) error {
	if bits != ChannelsFull && bits != ChannelsReduced {
		return ErrChannelBits
	}
	return nil
}

// EncodeChannels 编码升序无重复的通道列表
func EncodeChannels(channels []int, bits int) ([]byte, error) {
	if err := checkChannelBits(bits); err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return nil, ErrEmptyChannels
	}
	for i, ch := range channels {
		if ch < 0 || (i > 0 && ch <= channels[i-1]) {
			return nil, ErrInvalidChannels
		}
	}

	maxIndex := channels[len(channels)-1]
	byteCount := (maxIndex + bits) / bits // ceil((max+1)/bits)
	continueFlag := byte(1) << bits

	out := make([]byte, byteCount)
	for i := range out {
		out[i] = continueFlag
	}
	for _, ch := range channels {
		out[ch/bits] |= 1 << (ch % bits)
	}
	out[byteCount-1] &^= continueFlag
	return out, nil
}

// DecodeChannels 从 data 头部解码通道列表，返回升序结果与消耗字节数
func DecodeChannels(data []byte, bits int) ([]int, int, error) {
	b := From(data, nil)
	channels, err := b.Channels(bits)
	if err != nil {
		return nil, 0, err
	}
	return channels, b.Offset(), nil
}

// Channels 从游标处读取通道掩码
func (b *Buffer) Channels(bits int) ([]int, error) {
	if err := checkChannelBits(bits); err != nil {
		return nil, err
	}
	continueFlag := byte(1) << bits

	c, err := b.Uint8()
	if err != nil {
		return nil, err
	}
	var channels []int
	for k := 0; ; k++ {
		for p := 0; p < bits; p++ {
			if c&(1<<p) != 0 {
				channels = append(channels, k*bits+p)
			}
		}
		if c&continueFlag == 0 || b.IsEmpty() {
			break
		}
		c, _ = b.Uint8()
	}
	sort.Ints(channels)
	return channels, nil
}

// SetChannels 在游标处写入通道掩码
func (b *Buffer) SetChannels(channels []int, bits int) error {
	data, err := EncodeChannels(channels, bits)
	if err != nil {
		return err
	}
	return b.SetBytes(data)
}

// ChannelValue 通道序号及其扩展值读数
type ChannelValue struct {
	Index int    `json:"index" yaml:"index"`
	Value uint64 `json:"value" yaml:"value"`
}

// ChannelValues 读取通道掩码，随后按通道升序逐个读取扩展值
func (b *Buffer) ChannelValues(bits int) ([]ChannelValue, error) {
	channels, err := b.Channels(bits)
	if err != nil {
		return nil, err
	}
	out := make([]ChannelValue, 0, len(channels))
	for _, ch := range channels {
		v, err := b.ExtendedValue()
		if err != nil {
			return nil, err
		}
		out = append(out, ChannelValue{Index: ch, Value: v})
	}
	return out, nil
}

// SetChannelValues 写入通道掩码与各通道扩展值；values 须按通道升序
func (b *Buffer) SetChannelValues(values []ChannelValue, bits int) error {
	channels := make([]int, len(values))
	for i, cv := range values {
		channels[i] = cv.Index
	}
	if err := b.SetChannels(channels, bits); err != nil {
		return err
	}
	for _, cv := range values {
		if err := b.SetExtendedValue(cv.Value); err != nil {
			return err
		}
	}
	return nil
}

// ChannelValuesSize 通道掩码加全部扩展值所需字节数
func ChannelValuesSize(values []ChannelValue, bits int) int {
	if len(values) == 0 {
		return 0
	}
	n := (values[len(values)-1].Index + bits) / bits
	for _, cv := range values {
		n += ExtendedSize(cv.Value)
	}
	return n
}
