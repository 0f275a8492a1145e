package buffer

// 扩展值：每字节低 7 位为数据、最高位为续位标志，低位组在前，
// 遇到续位为 0 的字节结束；无显式长度。

const (
	extendedDataMask     = 0x7F
	extendedContinueFlag = 0x80
)

// EncodeExtended 编码扩展值；0 编码为单字节 0x00
func EncodeExtended(v uint64) []byte {
	if v == 0 {
		return []byte{0}
	}
	out := make([]byte, 0, ExtendedSize(v))
	for v > 0 {
		out = append(out, extendedContinueFlag|byte(v&extendedDataMask))
		v >>= 7
	}
	out[len(out)-1] &^= extendedContinueFlag
	return out
}

// ExtendedSize 扩展值编码后的字节数
func ExtendedSize(v uint64) int {
	n := 1
	for v >>= 7; v > 0; v >>= 7 {
		n++
	}
	return n
}

// DecodeExtended 从 data 头部解码扩展值，返回值与消耗字节数。
// 数据耗尽即视为链结束，不报错。
func DecodeExtended(data []byte) (uint64, int) {
	var v uint64
	for i, c := range data {
		if shift := 7 * uint(i); shift < 64 {
			v |= uint64(c&extendedDataMask) << shift
		}
		if c&extendedContinueFlag == 0 {
			return v, i + 1
		}
	}
	return v, len(data)
}

// ExtendedValue 从游标处读取扩展值
func (b *Buffer) ExtendedValue() (uint64, error) {
	v, n := DecodeExtended(b.data[b.offset:])
	b.offset += n
	return v, nil
}

// SetExtendedValue 在游标处写入扩展值
func (b *Buffer) SetExtendedValue(v uint64) error {
	return b.SetBytes(EncodeExtended(v))
}
