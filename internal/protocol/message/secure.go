package message

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/checksum"
)

// AccessLevel 访问级别；Unencrypted 以外的级别需要 AES 加密
type AccessLevel uint8

const (
	Root        AccessLevel = 0x02
	ReadWrite   AccessLevel = 0x03
	ReadOnly    AccessLevel = 0x04
	Unencrypted AccessLevel = 0x10
)

const (
	accessLevelMask = 0x1F
	endMarker       = 0x00
	// KeySize AES-128 密钥长度
	KeySize = 16
	// secureHeaderSize messageID + accessLevel
	secureHeaderSize = 2
)

var accessLevelNames = map[AccessLevel]string{
	Root:        "root",
	ReadWrite:   "readWrite",
	ReadOnly:    "readOnly",
	Unencrypted: "unencrypted",
}

func (a AccessLevel) String() string {
	if name, ok := accessLevelNames[a]; ok {
		return name
	}
	return fmt.Sprintf("accessLevel(0x%02X)", uint8(a))
}

// Encrypted 是否需要加密
func (a AccessLevel) Encrypted() bool { return a != Unencrypted }

// Valid 是否为已定义级别
func (a AccessLevel) Valid() bool {
	_, ok := accessLevelNames[a]
	return ok
}

// ParseAccessLevel 按名称解析访问级别（大小写不敏感）
func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return level, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrAccessLevel, s)
}

func (a AccessLevel) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AccessLevel) UnmarshalText(text []byte) error {
	v, err := ParseAccessLevel(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// SecureCodec 带访问级别的消息编解码：
// messageID(1) accessLevel&0x1F(1) | [accessLevel(1) command* 0x00 zeroPadding* lrc8(1)]
// 方括号部分在加密级别下整体 AES-128-CBC（零 IV）加密。
type SecureCodec struct {
	codec *Codec
	block cipher.Block
}

// NewSecureCodec key 为 nil 时只能处理 Unencrypted 级别
func NewSecureCodec(tables *Tables, key []byte, opts ...CodecOption) (*SecureCodec, error) {
	s := &SecureCodec{codec: NewCodec(tables, opts...)}
	if key != nil {
		if len(key) != KeySize {
			return nil, fmt.Errorf("%w: got %d", ErrBadKeySize, len(key))
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		s.block = block
	}
	return s, nil
}

// Codec 返回内部明文编解码器
func (s *SecureCodec) Codec() *Codec { return s.codec }

// SecureHeader 加密消息头
type SecureHeader struct {
	MessageID   uint8
	AccessLevel AccessLevel
}

// PaddingSize 使 n 字节明文加上 1 字节 LRC 后对齐 16 字节所需的零填充数
func PaddingSize(n int) int {
	return (aes.BlockSize - (n+1)%aes.BlockSize) % aes.BlockSize
}

// Encode 编码并按级别加密
func (s *SecureCodec) Encode(h SecureHeader, cmds []Outgoing, dir Direction) ([]byte, error) {
	if !h.AccessLevel.Valid() {
		return nil, fmt.Errorf("%w: 0x%02X", ErrAccessLevel, uint8(h.AccessLevel))
	}
	encrypted := h.AccessLevel.Encrypted()
	if encrypted && s.block == nil {
		return nil, ErrKeyRequired
	}

	body, err := s.codec.encodeCommands(cmds, dir)
	if err != nil {
		return nil, err
	}
	plain := make([]byte, 0, 1+len(body)+1+aes.BlockSize+1)
	plain = append(plain, byte(h.AccessLevel))
	plain = append(plain, body...)
	plain = append(plain, endMarker)
	if encrypted {
		plain = append(plain, make([]byte, PaddingSize(len(plain)))...)
	}
	plain = append(plain, checksum.LRC8Default(plain))

	if encrypted {
		cipher.NewCBCEncrypter(s.block, make([]byte, aes.BlockSize)).CryptBlocks(plain, plain)
	}

	out := make([]byte, 0, secureHeaderSize+len(plain))
	out = append(out, h.MessageID, byte(h.AccessLevel)&accessLevelMask)
	return append(out, plain...), nil
}

// Decode 解密（如需要）、校验 LRC 与内外访问级别，解析命令直到结束标志。
// 访问级别不一致与结束标志缺失记录在 Message.Errors，不中断解析。
func (s *SecureCodec) Decode(data []byte, opts DecodeOptions) (*Message, error) {
	if len(data) < secureHeaderSize {
		return nil, &buffer.OutOfRangeError{Width: secureHeaderSize, Offset: 0, Size: len(data)}
	}
	msg := &Message{
		ID:          data[0],
		AccessLevel: AccessLevel(data[1] & accessLevelMask),
		Raw:         append([]byte(nil), data...),
	}

	plain := append([]byte(nil), data[secureHeaderSize:]...)
	if msg.AccessLevel.Encrypted() {
		if s.block == nil {
			return nil, ErrKeyRequired
		}
		if len(plain) == 0 || len(plain)%aes.BlockSize != 0 {
			return nil, fmt.Errorf("%w: %d bytes", ErrBadBlockSize, len(plain))
		}
		cipher.NewCBCDecrypter(s.block, make([]byte, aes.BlockSize)).CryptBlocks(plain, plain)
	}
	// accessLevel + lrc
	if len(plain) < 2 {
		return nil, &buffer.OutOfRangeError{Width: 2, Offset: secureHeaderSize, Size: len(data)}
	}

	last := len(plain) - 1
	expected := plain[last]
	actual := checksum.LRC8Default(plain[:last])
	msg.LRC = LRC{Expected: &expected, Actual: actual}
	msg.Valid = expected == actual
	if !msg.Valid {
		s.codec.logger.Warn("secure message lrc mismatch",
			zap.Uint8("message_id", msg.ID),
			zap.Uint8("expected", expected),
			zap.Uint8("actual", actual),
		)
		msg.Errors = append(msg.Errors, fmt.Errorf("%w: expected 0x%02X, actual 0x%02X", ErrChecksumMismatch, expected, actual))
	}

	if inner := AccessLevel(plain[0]); inner != msg.AccessLevel {
		msg.Valid = false
		msg.Errors = append(msg.Errors, fmt.Errorf("%w: header %s, body %s", ErrAccessLevelMismatch, msg.AccessLevel, inner))
	}

	entries, err := s.codec.decodeCommands(buffer.From(plain[1:last], nil), true, opts)
	switch {
	case errors.Is(err, ErrMissingEndMarker):
		msg.Valid = false
		msg.Errors = append(msg.Errors, err)
	case err != nil:
		return nil, err
	}
	msg.Commands = entries
	return msg, nil
}
