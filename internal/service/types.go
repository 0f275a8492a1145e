package service

import (
	"encoding/json"

	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// 请求中的字节字段均为文本（hex/base64），Format 为空时使用服务默认格式。

// FrameDecodeRequest 解码链路帧，可选继续解码帧内消息
type FrameDecodeRequest struct {
	Data     string `json:"data" binding:"required"`
	Format   string `json:"format,omitempty"`
	SevenBit *bool  `json:"seven_bit,omitempty"`
	// Message 非空时按该选项解码帧内容
	Message *MessageOptions `json:"message,omitempty"`
}

// FrameEncodeRequest 编码链路帧
type FrameEncodeRequest struct {
	Content  string `json:"content"`
	Format   string `json:"format,omitempty"`
	SevenBit *bool  `json:"seven_bit,omitempty"`
}

// FrameScanRequest 从字节流中拆出全部有效帧
type FrameScanRequest struct {
	Stream   string `json:"stream" binding:"required"`
	Format   string `json:"format,omitempty"`
	SevenBit *bool  `json:"seven_bit,omitempty"`
}

// MessageOptions 消息解码选项
type MessageOptions struct {
	Secure       bool   `json:"secure,omitempty"`
	Direction    string `json:"direction,omitempty"`
	HardwareType *int   `json:"hardware_type,omitempty"`
}

// MessageDecodeRequest 解码消息
type MessageDecodeRequest struct {
	Data   string `json:"data" binding:"required"`
	Format string `json:"format,omitempty"`
	MessageOptions
}

// CommandInput 待编码命令：按 id 或 name 查表；Body 非空时直接使用原始命令体
type CommandInput struct {
	ID     uint16          `json:"id,omitempty"`
	Name   string          `json:"name,omitempty"`
	Params json.RawMessage `json:"params,omitempty" swaggertype:"object"`
	Body   string          `json:"body,omitempty"`
}

// MessageEncodeRequest 编码消息，可选直接封装为链路帧
type MessageEncodeRequest struct {
	Commands    []CommandInput `json:"commands" binding:"required"`
	Direction   string         `json:"direction,omitempty"`
	Format      string         `json:"format,omitempty"`
	Secure      bool           `json:"secure,omitempty"`
	MessageID   uint8          `json:"message_id,omitempty"`
	AccessLevel string         `json:"access_level,omitempty"`
	Frame       bool           `json:"frame,omitempty"`
	SevenBit    *bool          `json:"seven_bit,omitempty"`
}

// CRCView 帧校验
type CRCView struct {
	Expected *uint16 `json:"expected,omitempty"`
	Actual   uint16  `json:"actual"`
}

// FrameView 解码后的帧
type FrameView struct {
	Content string       `json:"content"`
	Wire    string       `json:"wire"`
	CRC     CRCView      `json:"crc"`
	Valid   bool         `json:"valid"`
	Message *MessageView `json:"message,omitempty"`
}

// EntryView 命令条目
type EntryView struct {
	ID        uint16 `json:"id"`
	Name      string `json:"name,omitempty"`
	Direction string `json:"direction"`
	Body      string `json:"body"`
	Params    any    `json:"params,omitempty"`
	Error     string `json:"error,omitempty"`
}

// MessageView 解码后的消息
type MessageView struct {
	ID          *uint8      `json:"id,omitempty"`
	AccessLevel string      `json:"access_level,omitempty"`
	Commands    []EntryView `json:"commands"`
	LRC         message.LRC `json:"lrc"`
	Valid       bool        `json:"valid"`
	Resolved    bool        `json:"resolved"`
	Errors      []string    `json:"errors,omitempty"`
	// Reassembled 本消息补齐某会话全部分段后拼出的消息
	Reassembled []*MessageView `json:"reassembled,omitempty"`
}

// EncodeResult 编码结果
type EncodeResult struct {
	Data  string  `json:"data"`
	Frame string  `json:"frame,omitempty"`
	CRC   *uint16 `json:"crc,omitempty"`
}

// ScanResult 流拆帧结果
type ScanResult struct {
	Frames   []FrameView `json:"frames"`
	Dropped  int         `json:"dropped"`
	Buffered int         `json:"buffered"`
}

// CommandInfo 已注册命令
type CommandInfo struct {
	ID        uint16 `json:"id"`
	Name      string `json:"name"`
	Direction string `json:"direction"`
	Encodable bool   `json:"encodable"`
}
