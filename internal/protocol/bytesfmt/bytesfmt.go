// Package bytesfmt 字节序列与文本（hex/base64）之间的转换，仅用于系统边界。
package bytesfmt

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Kind 文本编码类型
type Kind string

const (
	Hex    Kind = "hex"
	Base64 Kind = "base64"
)

var ErrKind = errors.New("unknown bytes format")

// Format 文本格式
type Format struct {
	Kind      Kind   `mapstructure:"kind" json:"kind"`
	Separator string `mapstructure:"separator" json:"separator"`
	Uppercase bool   `mapstructure:"uppercase" json:"uppercase"`
}

// DefaultFormat 空格分隔的小写 hex
var DefaultFormat = Format{Kind: Hex, Separator: " "}

// ParseKind 解析编码类型，空串为 hex
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", Hex:
		return Hex, nil
	case Base64:
		return Base64, nil
	}
	return "", fmt.Errorf("%w: %q", ErrKind, s)
}

// String 按格式输出
func (f Format) String(data []byte) string {
	if f.Kind == Base64 {
		return base64.StdEncoding.EncodeToString(data)
	}
	s := hex.EncodeToString(data)
	if f.Uppercase {
		s = strings.ToUpper(s)
	}
	if f.Separator == "" || len(data) < 2 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + (len(data)-1)*len(f.Separator))
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			sb.WriteString(f.Separator)
		}
		sb.WriteString(s[i : i+2])
	}
	return sb.String()
}

// Parse 解析文本；hex 容忍空白、冒号、短横线与 0x 前缀
func (f Format) Parse(s string) ([]byte, error) {
	if f.Kind == Base64 {
		return ParseBase64(s)
	}
	return ParseHex(s)
}

// ParseHex 解析 hex 文本
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-', ',':
			return -1
		}
		return r
	}, s)
	out, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return out, nil
}

// ParseBase64 解析 base64 文本（标准或 URL 字母表，填充可省略）
func ParseBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if out, err := enc.DecodeString(s); err == nil {
			return out, nil
		}
	}
	return nil, fmt.Errorf("parse base64: invalid input %q", s)
}
