package message

import (
	"errors"

	"github.com/taoyao-code/meter-codec/internal/protocol/checksum"
)

var (
	// ErrUnknownCommand 命令 id 在所查表中不存在（降级为占位条目）
	ErrUnknownCommand = errors.New("unknown command")
	// ErrCommandDecode 单条命令解码失败（降级为占位条目）
	ErrCommandDecode = errors.New("command decode failed")
	// ErrMandatoryContextMissing 命令解码需要的上下文缺失，整条消息解码失败
	ErrMandatoryContextMissing = errors.New("mandatory decode context missing")
	// ErrChecksumMismatch 消息 LRC 不匹配，记录在 Message.Errors
	ErrChecksumMismatch = checksum.ErrChecksumMismatch

	ErrEmptyMessage     = errors.New("empty message")
	ErrCommandIDRange   = errors.New("command id out of range")
	ErrBodyTooLarge     = errors.New("command body exceeds 255 bytes")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrNoEncoder        = errors.New("command has no encoder")
	ErrDirection        = errors.New("invalid direction")

	// 加密消息
	ErrKeyRequired         = errors.New("access level requires an encryption key")
	ErrBadKeySize          = errors.New("encryption key must be 16 bytes")
	ErrBadBlockSize        = errors.New("encrypted payload is not a multiple of the block size")
	ErrAccessLevelMismatch = errors.New("inner access level does not match header")
	ErrMissingEndMarker    = errors.New("end of commands marker not found")
	ErrAccessLevel         = errors.New("invalid access level")
)
