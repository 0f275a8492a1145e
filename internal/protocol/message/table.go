package message

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Direction 命令方向
type Direction int

const (
	// Auto 先按上行解码，失败再按下行
	Auto Direction = iota
	// Downlink 服务端 -> 设备
	Downlink
	// Uplink 设备 -> 服务端
	Uplink
)

func (d Direction) String() string {
	switch d {
	case Downlink:
		return "downlink"
	case Uplink:
		return "uplink"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection 解析方向字符串（大小写不敏感，空串为 auto）
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "downlink", "down":
		return Downlink, nil
	case "uplink", "up":
		return Uplink, nil
	}
	return Auto, fmt.Errorf("%w: %q", ErrDirection, s)
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(text []byte) error {
	v, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Context 解码上下文，部分命令族需要硬件类型才能确定报文形态
type Context struct {
	HardwareType *uint8
	Extra        map[string]any
}

// RequireHardwareType 取硬件类型，缺失时返回 ErrMandatoryContextMissing
func (c *Context) RequireHardwareType() (uint8, error) {
	if c == nil || c.HardwareType == nil {
		return 0, fmt.Errorf("%w: hardware type", ErrMandatoryContextMissing)
	}
	return *c.HardwareType, nil
}

// DecodeFunc 命令体 -> 参数
type DecodeFunc func(body []byte, ctx *Context) (any, error)

// EncodeFunc 参数 -> 命令体
type EncodeFunc func(params any) ([]byte, error)

// Command 单条命令的编解码定义
type Command struct {
	ID        uint16
	Name      string
	Direction Direction
	Decode    DecodeFunc
	Encode    EncodeFunc
}

// Table 命令表（id -> command），注册后只读
type Table struct {
	mu        sync.RWMutex
	direction Direction
	commands  map[uint16]Command
}

func NewTable(dir Direction) *Table {
	return &Table{direction: dir, commands: make(map[uint16]Command)}
}

func (t *Table) Direction() Direction { return t.direction }

// Register 注册命令；id 重复或越界返回错误
func (t *Table) Register(c Command) error {
	if c.ID > MaxCommandID {
		return fmt.Errorf("%w: 0x%X", ErrCommandIDRange, c.ID)
	}
	if c.Decode == nil {
		return fmt.Errorf("command %s (0x%X) has no decoder", c.Name, c.ID)
	}
	c.Direction = t.direction

	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.commands[c.ID]; ok {
		return fmt.Errorf("%w: 0x%X %s (existing %s)", ErrDuplicateCommand, c.ID, c.Name, old.Name)
	}
	t.commands[c.ID] = c
	return nil
}

// MustRegister 用于包初始化时的静态注册
func (t *Table) MustRegister(cmds ...Command) {
	for _, c := range cmds {
		if err := t.Register(c); err != nil {
			panic(err)
		}
	}
}

func (t *Table) Lookup(id uint16) (Command, bool) {
	t.mu.RLock()
	c, ok := t.commands[id]
	t.mu.RUnlock()
	return c, ok
}

// LookupName 按名称查找
func (t *Table) LookupName(name string) (Command, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Commands 按 id 升序返回全部命令
func (t *Table) Commands() []Command {
	t.mu.RLock()
	out := make([]Command, 0, len(t.commands))
	for _, c := range t.commands {
		out = append(out, c)
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.commands)
}

// Tables 下行/上行命令表
type Tables struct {
	Downlink *Table
	Uplink   *Table
}

func NewTables() *Tables {
	return &Tables{Downlink: NewTable(Downlink), Uplink: NewTable(Uplink)}
}

// Table 按方向取表；Auto 返回 nil
func (ts *Tables) Table(dir Direction) *Table {
	switch dir {
	case Downlink:
		return ts.Downlink
	case Uplink:
		return ts.Uplink
	}
	return nil
}
