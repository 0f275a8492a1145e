package checksum

// LRCInitial 消息级 LRC8 默认初值
const LRCInitial byte = 0x55

// LRC8 对所有字节做异或累加；空数据返回 initial
func LRC8(data []byte, initial byte) byte {
	sum := initial
	for _, b := range data {
		sum ^= b
	}
	return sum
}

// LRC8Default 以 LRCInitial 为初值计算 LRC8
func LRC8Default(data []byte) byte {
	return LRC8(data, LRCInitial)
}

// VerifyLRC8 校验末字节为其之前所有字节的 LRC8
func VerifyLRC8(dataWithLRC []byte) error {
	if len(dataWithLRC) < 1 {
		return ErrChecksumMismatch
	}
	last := len(dataWithLRC) - 1
	if LRC8Default(dataWithLRC[:last]) != dataWithLRC[last] {
		return ErrChecksumMismatch
	}
	return nil
}
