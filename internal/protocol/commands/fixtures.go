package commands

import (
	_ "embed"
	"fmt"
	"reflect"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/meter-codec/internal/protocol/bytesfmt"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

//go:embed fixtures/examples.yaml
var examplesYAML []byte

// CommandExample 单条命令样例
type CommandExample struct {
	Name         string            `yaml:"name"`
	Direction    message.Direction `yaml:"direction"`
	ID           uint16            `yaml:"id"`
	HardwareType *uint8            `yaml:"hardware_type"`
	Body         string            `yaml:"body"`
	Params       yaml.Node         `yaml:"params"`
}

// MessageExample 完整明文消息样例
type MessageExample struct {
	Name         string            `yaml:"name"`
	Direction    message.Direction `yaml:"direction"`
	HardwareType *uint8            `yaml:"hardware_type"`
	Hex          string            `yaml:"hex"`
	Commands     []string          `yaml:"commands"`
}

// Examples 样例集
type Examples struct {
	Commands []CommandExample `yaml:"commands"`
	Messages []MessageExample `yaml:"messages"`
}

var (
	examplesOnce sync.Once
	examples     *Examples
	examplesErr  error
)

// LoadExamples 解析 YAML 样例
func LoadExamples(data []byte) (*Examples, error) {
	var ex Examples
	if err := yaml.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("parse examples: %w", err)
	}
	return &ex, nil
}

// BuiltinExamples 返回内嵌样例（只解析一次）
func BuiltinExamples() (*Examples, error) {
	examplesOnce.Do(func() {
		examples, examplesErr = LoadExamples(examplesYAML)
	})
	return examples, examplesErr
}

// BodyBytes 命令体字节
func (e CommandExample) BodyBytes() ([]byte, error) {
	return bytesfmt.ParseHex(e.Body)
}

// Context 解码上下文
func (e CommandExample) Context() *message.Context {
	return &message.Context{HardwareType: e.HardwareType}
}

// DecodeParams 把 YAML 参数解析为命令的参数类型（值类型）
func (e CommandExample) DecodeParams() (any, error) {
	ptr, ok := NewParams(e.Direction, e.ID)
	if !ok {
		return nil, fmt.Errorf("no params type for %s 0x%X", e.Direction, e.ID)
	}
	if err := e.Params.Decode(ptr); err != nil {
		return nil, fmt.Errorf("decode params of %s: %w", e.Name, err)
	}
	return reflect.ValueOf(ptr).Elem().Interface(), nil
}

// Bytes 消息字节
func (m MessageExample) Bytes() ([]byte, error) {
	return bytesfmt.ParseHex(m.Hex)
}

// Context 解码上下文
func (m MessageExample) Context() *message.Context {
	return &message.Context{HardwareType: m.HardwareType}
}
