package frame

import "errors"

// 保留字节
const (
	Marker        byte = 0x7E // 帧起止标志
	Escape        byte = 0x7D // 转义前缀
	HighBitEscape byte = 0x7C // 7 位模式下高位字节前缀
)

var (
	ErrDanglingEscape   = errors.New("frame ends inside an escape sequence")
	ErrUnknownEscape    = errors.New("unknown escape substitute")
	ErrUnexpectedMarker = errors.New("unexpected marker inside frame")
)

// 转义表：保留字节 -> 替代字节
var stuffTable = map[byte]byte{
	0x7E: 0x5E,
	0x7D: 0x5D,
	0x11: 0x31,
	0x13: 0x33,
}

// 7 位模式额外保留 HighBitEscape
var sevenBitStuffTable = withEntry(stuffTable, HighBitEscape, 0x5C)

var (
	unstuffTable         = invert(stuffTable)
	sevenBitUnstuffTable = invert(sevenBitStuffTable)
)

func withEntry(m map[byte]byte, k, v byte) map[byte]byte {
	out := make(map[byte]byte, len(m)+1)
	for kk, vv := range m {
		out[kk] = vv
	}
	out[k] = v
	return out
}

func invert(m map[byte]byte) map[byte]byte {
	out := make(map[byte]byte, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// Stuff 对数据做字节填充；sevenBit 时高位置位的字节拆成 HighBitEscape + 低 7 位
func Stuff(data []byte, sevenBit bool) []byte {
	table := stuffTable
	if sevenBit {
		table = sevenBitStuffTable
	}
	out := make([]byte, 0, len(data)+len(data)/8+2)
	for _, b := range data {
		if sevenBit && b&0x80 != 0 {
			out = append(out, HighBitEscape)
			b &= 0x7F
		}
		if sub, ok := table[b]; ok {
			out = append(out, Escape, sub)
			continue
		}
		out = append(out, b)
	}
	return out
}

// Unstuff 还原字节填充
func Unstuff(data []byte, sevenBit bool) ([]byte, error) {
	table := unstuffTable
	if sevenBit {
		table = sevenBitUnstuffTable
	}
	out := make([]byte, 0, len(data))
	escaped := false
	highBit := false
	for _, b := range data {
		switch {
		case escaped:
			orig, ok := table[b]
			if !ok {
				return nil, ErrUnknownEscape
			}
			b = orig
			escaped = false
		case b == Marker:
			return nil, ErrUnexpectedMarker
		case b == Escape:
			escaped = true
			continue
		case sevenBit && b == HighBitEscape:
			if highBit {
				return nil, ErrDanglingEscape
			}
			highBit = true
			continue
		}
		if highBit {
			b |= 0x80
			highBit = false
		}
		out = append(out, b)
	}
	if escaped || highBit {
		return nil, ErrDanglingEscape
	}
	return out, nil
}
