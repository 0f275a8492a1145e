package checksum

import (
	"encoding/binary"
	"errors"

	"github.com/sigurn/crc16"
)

// ErrChecksumMismatch 校验失败
var ErrChecksumMismatch = errors.New("checksum mismatch")

// CRC-16/X-25：多项式 0x1021（反射），初值 0xFFFF，结果异或 0xFFFF
var x25Table = crc16.MakeTable(crc16.CRC16_X_25)

// CRC16Size 链路帧校验字段长度
const CRC16Size = 2

// CRC16 计算链路帧校验值
func CRC16(data []byte) uint16 {
	return crc16.Checksum(data, x25Table)
}

// AppendCRC16 在 data 后追加 CRC（低字节在前，与现场抓包一致）
func AppendCRC16(data []byte) []byte {
	return binary.LittleEndian.AppendUint16(data, CRC16(data))
}

// SplitCRC16 拆出尾部 2 字节 CRC，返回负载与期望值
func SplitCRC16(data []byte) ([]byte, uint16, bool) {
	if len(data) < CRC16Size {
		return nil, 0, false
	}
	n := len(data) - CRC16Size
	return data[:n], binary.LittleEndian.Uint16(data[n:]), true
}
