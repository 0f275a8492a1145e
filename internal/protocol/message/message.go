package message

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/checksum"
)

// LRC 消息校验；Expected 为消息携带值
type LRC struct {
	Expected *byte `json:"expected,omitempty"`
	Actual   byte  `json:"actual"`
}

// Entry 消息中的一条命令；Err 非空表示占位条目（未知命令或解码失败）
type Entry struct {
	Header    Header    `json:"header"`
	Body      []byte    `json:"body"`
	Name      string    `json:"name,omitempty"`
	Direction Direction `json:"direction"`
	Params    any       `json:"params,omitempty"`
	Err       error     `json:"-"`
}

// Placeholder 是否为占位条目
func (e Entry) Placeholder() bool { return e.Err != nil }

// Message 解码后的消息
type Message struct {
	ID          uint8       `json:"id,omitempty"`
	AccessLevel AccessLevel `json:"access_level,omitempty"`
	Commands    []Entry     `json:"commands"`
	LRC         LRC         `json:"lrc"`
	Valid       bool        `json:"valid"`
	Raw         []byte      `json:"raw"`
	Errors      []error     `json:"-"`
}

// Resolved 全部命令都已按表解码
func (m *Message) Resolved() bool {
	for _, e := range m.Commands {
		if e.Placeholder() {
			return false
		}
	}
	return true
}

// DecodeOptions 解码选项
type DecodeOptions struct {
	Direction Direction
	Context   *Context
}

// Outgoing 待编码命令；Body 非空时直接使用原始命令体
type Outgoing struct {
	ID     uint16 `json:"id"`
	Name   string `json:"name,omitempty"`
	Params any    `json:"params,omitempty"`
	Body   []byte `json:"body,omitempty"`
}

// Codec 明文消息编解码：commandHeader body ... lrc8
type Codec struct {
	tables *Tables
	logger *zap.Logger
}

// CodecOption 编解码器选项
type CodecOption func(*Codec)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) CodecOption {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCodec(tables *Tables, opts ...CodecOption) *Codec {
	if tables == nil {
		tables = NewTables()
	}
	c := &Codec{tables: tables, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tables 返回命令表
func (c *Codec) Tables() *Tables { return c.tables }

// Decode 解码明文消息：末字节为之前全部字节的 LRC8。
// 命令越界为硬错误；未知命令与单条解码失败降级为占位条目。
func (c *Codec) Decode(data []byte, opts DecodeOptions) (*Message, error) {
	if len(data) == 0 {
		return nil, ErrEmptyMessage
	}
	last := len(data) - 1
	entries, err := c.decodeCommands(buffer.From(data[:last], nil), false, opts)
	if err != nil {
		return nil, err
	}

	expected := data[last]
	actual := checksum.LRC8Default(data[:last])
	msg := &Message{
		Commands: entries,
		LRC:      LRC{Expected: &expected, Actual: actual},
		Valid:    expected == actual,
		Raw:      append([]byte(nil), data...),
	}
	if !msg.Valid {
		c.logger.Warn("message lrc mismatch", zap.Uint8("expected", expected), zap.Uint8("actual", actual))
		msg.Errors = append(msg.Errors, fmt.Errorf("%w: expected 0x%02X, actual 0x%02X", ErrChecksumMismatch, expected, actual))
	}
	return msg, nil
}

// Encode 按方向编码命令并追加 LRC8
func (c *Codec) Encode(cmds []Outgoing, dir Direction) ([]byte, error) {
	out, err := c.encodeCommands(cmds, dir)
	if err != nil {
		return nil, err
	}
	return append(out, checksum.LRC8Default(out)), nil
}

// decodeCommands 逐条切分命令直到缓冲耗尽；stopAtEnd 时遇到 0x00 结束标志停止
func (c *Codec) decodeCommands(b *buffer.Buffer, stopAtEnd bool, opts DecodeOptions) ([]Entry, error) {
	entries := make([]Entry, 0, 4)
	for !b.IsEmpty() {
		if next, _ := b.PeekUint8(); stopAtEnd && next == endMarker {
			_, _ = b.Uint8()
			return entries, nil
		}
		start := b.Offset()
		h, err := readHeader(b)
		if err != nil {
			return nil, fmt.Errorf("command header at offset %d: %w", start, err)
		}
		body, err := b.Bytes(h.BodySize)
		if err != nil {
			return nil, fmt.Errorf("command 0x%X body at offset %d: %w", h.ID, start, err)
		}
		e, err := c.resolve(h, body, opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if stopAtEnd {
		return entries, ErrMissingEndMarker
	}
	return entries, nil
}

// attempt 单表解码尝试结果
type attempt struct {
	cmd    Command
	found  bool
	params any
	err    error
}

func try(t *Table, h Header, body []byte, ctx *Context) (a attempt) {
	if t == nil {
		return a
	}
	a.cmd, a.found = t.Lookup(h.ID)
	if !a.found {
		return a
	}
	defer func() {
		if r := recover(); r != nil {
			a.err = fmt.Errorf("decoder panic: %v", r)
		}
	}()
	a.params, a.err = a.cmd.Decode(body, ctx)
	return a
}

// resolve 按方向策略解码一条命令：显式方向只查对应表；Auto 先上行后下行
func (c *Codec) resolve(h Header, body []byte, opts DecodeOptions) (Entry, error) {
	entry := Entry{Header: h, Body: body, Direction: opts.Direction}

	var order []Direction
	switch opts.Direction {
	case Auto:
		order = []Direction{Uplink, Downlink}
	case Downlink, Uplink:
		order = []Direction{opts.Direction}
	default:
		return Entry{}, fmt.Errorf("%w: %d", ErrDirection, int(opts.Direction))
	}

	var failed *attempt
	for _, dir := range order {
		a := try(c.tables.Table(dir), h, body, opts.Context)
		if !a.found {
			continue
		}
		if a.err == nil {
			entry.Name = a.cmd.Name
			entry.Direction = dir
			entry.Params = a.params
			return entry, nil
		}
		if errors.Is(a.err, ErrMandatoryContextMissing) {
			return Entry{}, fmt.Errorf("command %s (0x%X): %w", a.cmd.Name, h.ID, a.err)
		}
		if failed == nil {
			failed = &a
		}
	}

	if failed == nil {
		entry.Err = fmt.Errorf("%w: 0x%X", ErrUnknownCommand, h.ID)
		c.logger.Debug("unknown command", zap.Uint16("id", h.ID), zap.Stringer("direction", opts.Direction))
		return entry, nil
	}
	entry.Name = failed.cmd.Name
	entry.Direction = failed.cmd.Direction
	entry.Err = fmt.Errorf("%w: %s (0x%X): %w", ErrCommandDecode, failed.cmd.Name, h.ID, failed.err)
	c.logger.Debug("command decode degraded",
		zap.Uint16("id", h.ID),
		zap.String("name", failed.cmd.Name),
		zap.Error(failed.err),
	)
	return entry, nil
}

// encodeCommands 编码并拼接 header+body
func (c *Codec) encodeCommands(cmds []Outgoing, dir Direction) ([]byte, error) {
	var out []byte
	for i, o := range cmds {
		id, body, err := c.encodeBody(o, dir)
		if err != nil {
			return nil, fmt.Errorf("command #%d (0x%X): %w", i, o.ID, err)
		}
		h, err := NewHeader(id, len(body))
		if err != nil {
			return nil, fmt.Errorf("command #%d: %w", i, err)
		}
		out = append(out, h.Bytes()...)
		out = append(out, body...)
	}
	return out, nil
}

// encodeBody 返回实际 id 与命令体；按名称查找时 id 取表中定义
func (c *Codec) encodeBody(o Outgoing, dir Direction) (uint16, []byte, error) {
	if o.Body != nil {
		return o.ID, o.Body, nil
	}
	var order []Direction
	switch dir {
	case Auto:
		order = []Direction{Downlink, Uplink}
	case Downlink, Uplink:
		order = []Direction{dir}
	default:
		return 0, nil, fmt.Errorf("%w: %d", ErrDirection, int(dir))
	}
	for _, d := range order {
		t := c.tables.Table(d)
		cmd, ok := t.Lookup(o.ID)
		if !ok && o.Name != "" {
			cmd, ok = t.LookupName(o.Name)
		}
		if !ok {
			continue
		}
		if cmd.Encode == nil {
			return 0, nil, fmt.Errorf("%w: %s", ErrNoEncoder, cmd.Name)
		}
		body, err := cmd.Encode(o.Params)
		return cmd.ID, body, err
	}
	return 0, nil, fmt.Errorf("%w: 0x%X", ErrUnknownCommand, o.ID)
}
