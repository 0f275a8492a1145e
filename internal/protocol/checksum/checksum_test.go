package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

func TestCRC16(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected uint16
	}{
		{"标准校验串", []byte("123456789"), 0x906E},
		{"0x00..0x0F", sequence(16), 0x13E9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CRC16(tt.data))
		})
	}
}

func TestAppendAndSplitCRC16(t *testing.T) {
	data := sequence(16)
	withCRC := AppendCRC16(append([]byte(nil), data...))
	require.Len(t, withCRC, 18)
	assert.Equal(t, []byte{0xE9, 0x13}, withCRC[16:], "低字节在前")

	payload, expected, ok := SplitCRC16(withCRC)
	require.True(t, ok)
	assert.Equal(t, data, payload)
	assert.Equal(t, uint16(0x13E9), expected)

	_, _, ok = SplitCRC16([]byte{0x01})
	assert.False(t, ok)
}

func TestLRC8(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"空数据返回初值", nil, 0x55},
		{"单字节", []byte{0x55}, 0x00},
		{"命令头+体", []byte{0x0C, 0x02, 0x2D, 0x88}, 0xFE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LRC8Default(tt.data))
		})
	}

	assert.Equal(t, byte(0x0F), LRC8([]byte{0xF0}, 0xFF))
}

func TestVerifyLRC8(t *testing.T) {
	assert.NoError(t, VerifyLRC8([]byte{0x0C, 0x02, 0x2D, 0x88, 0xFE}))
	assert.ErrorIs(t, VerifyLRC8([]byte{0x0C, 0x02, 0x2D, 0x88, 0xFF}), ErrChecksumMismatch)
	assert.ErrorIs(t, VerifyLRC8(nil), ErrChecksumMismatch)
	assert.NoError(t, VerifyLRC8([]byte{0x55}))
}

func TestLRC8_SingleBitFlip(t *testing.T) {
	data := []byte{0x0C, 0x02, 0x2D, 0x88, 0x07, 0x00}
	base := LRC8Default(data)
	for i := range data {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), data...)
			flipped[i] ^= 1 << bit
			assert.NotEqual(t, base, LRC8Default(flipped), "byte %d bit %d", i, bit)
		}
	}
}
