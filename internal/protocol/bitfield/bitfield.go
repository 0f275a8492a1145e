package bitfield

import (
	"fmt"
	"sort"
)

// Field 位段描述：从 StartBit（0 为最低位）起连续 BitCount 位
type Field struct {
	BitCount uint8
	StartBit uint8
}

// mask 返回位段在整数中的掩码（未移位）
func (f Field) mask() uint32 {
	checkRange(f.BitCount, f.StartBit)
	if f.BitCount == 32 {
		return 0xFFFFFFFF
	}
	return (uint32(1) << f.BitCount) - 1
}

// overlaps 判断两个位段是否重叠
func (f Field) overlaps(o Field) bool {
	return f.StartBit < o.StartBit+o.BitCount && o.StartBit < f.StartBit+f.BitCount
}

// checkRange 位段越界属于调用方编程错误，直接 panic
func checkRange(bitCount, startBit uint8) {
	if bitCount == 0 || int(bitCount)+int(startBit) > 32 {
		panic(fmt.Sprintf("bitfield: invalid range bitCount=%d startBit=%d", bitCount, startBit))
	}
}

// ExtractBits 取出 value 中 [startBit, startBit+bitCount) 的位
func ExtractBits(value uint32, bitCount, startBit uint8) uint32 {
	f := Field{BitCount: bitCount, StartBit: startBit}
	return (value >> startBit) & f.mask()
}

// FillBits 清除 value 中对应位段后填入 newBits，返回新值（不修改入参）
func FillBits(value uint32, bitCount, startBit uint8, newBits uint32) uint32 {
	m := Field{BitCount: bitCount, StartBit: startBit}.mask()
	value &^= m << startBit
	return value | (newBits&m)<<startBit
}

// MaskTable 布尔标志表：名称 -> 单比特掩码
type MaskTable map[string]uint32

// FromFlags 将布尔标志集合折叠为整数；未知名称忽略，缺失视为 false
func FromFlags(table MaskTable, flags map[string]bool) uint32 {
	var v uint32
	for name, mask := range table {
		if flags[name] {
			v |= mask
		}
	}
	return v
}

// ToFlags 将整数展开为布尔标志集合，每个表项一个结果
func ToFlags(table MaskTable, value uint32) map[string]bool {
	flags := make(map[string]bool, len(table))
	for name, mask := range table {
		flags[name] = value&mask != 0
	}
	return flags
}

// Names 按掩码从低到高返回表项名称
func (t MaskTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return t[names[i]] < t[names[j]] })
	return names
}

// FieldTable 多比特位段表：名称 -> 位段
type FieldTable map[string]Field

// MustFieldTable 构造位段表，位段重叠时 panic（用于包级常量表）
func MustFieldTable(fields map[string]Field) FieldTable {
	t := FieldTable(fields)
	if err := t.Validate(); err != nil {
		panic(err)
	}
	return t
}

// Validate 校验位段合法且互不重叠
func (t FieldTable) Validate() error {
	names := make([]string, 0, len(t))
	for name, f := range t {
		if f.BitCount == 0 || int(f.BitCount)+int(f.StartBit) > 32 {
			return fmt.Errorf("bitfield: field %q out of range", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if t[names[i]].overlaps(t[names[j]]) {
				return fmt.Errorf("bitfield: fields %q and %q overlap", names[i], names[j])
			}
		}
	}
	return nil
}

// Pack 按表将各字段值写入整数；未知名称忽略，超宽的值按位段宽度截断
func (t FieldTable) Pack(values map[string]uint32) uint32 {
	var v uint32
	for name, f := range t {
		if x, ok := values[name]; ok {
			v = FillBits(v, f.BitCount, f.StartBit, x)
		}
	}
	return v
}

// Unpack 按表从整数中取出各字段值
func (t FieldTable) Unpack(value uint32) map[string]uint32 {
	out := make(map[string]uint32, len(t))
	for name, f := range t {
		out[name] = ExtractBits(value, f.BitCount, f.StartBit)
	}
	return out
}
