package service

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/taoyao-code/meter-codec/internal/protocol/commands"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// ErrSelfTest 内置样例往返失败
var ErrSelfTest = errors.New("codec self test failed")

// SelfTest 用内嵌样例对当前命令表做一次编解码往返，返回通过的样例数
func (s *CodecService) SelfTest() (int, error) {
	ex, err := commands.BuiltinExamples()
	if err != nil {
		return 0, err
	}
	passed := 0
	for _, c := range ex.Commands {
		if err := s.selfTestCommand(c); err != nil {
			return passed, fmt.Errorf("%w: command %s/%s: %v", ErrSelfTest, c.Name, c.Direction, err)
		}
		passed++
	}
	for _, m := range ex.Messages {
		if err := s.selfTestMessage(m); err != nil {
			return passed, fmt.Errorf("%w: message %q: %v", ErrSelfTest, m.Name, err)
		}
		passed++
	}
	return passed, nil
}

func (s *CodecService) selfTestCommand(c commands.CommandExample) error {
	expected, err := c.DecodeParams()
	if err != nil {
		return err
	}
	data, err := s.codec.Encode([]message.Outgoing{{ID: c.ID, Params: expected}}, c.Direction)
	if err != nil {
		return err
	}
	msg, err := s.codec.Decode(data, message.DecodeOptions{Direction: c.Direction, Context: c.Context()})
	if err != nil {
		return err
	}
	if !msg.Valid || len(msg.Commands) != 1 {
		return fmt.Errorf("unexpected message shape: valid=%v commands=%d", msg.Valid, len(msg.Commands))
	}
	if e := msg.Commands[0]; e.Err != nil {
		return e.Err
	} else if !reflect.DeepEqual(expected, e.Params) {
		return fmt.Errorf("params mismatch: want %+v, got %+v", expected, e.Params)
	}
	return nil
}

func (s *CodecService) selfTestMessage(m commands.MessageExample) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	msg, err := s.codec.Decode(data, message.DecodeOptions{Direction: m.Direction, Context: m.Context()})
	if err != nil {
		return err
	}
	if !msg.Valid {
		return fmt.Errorf("lrc mismatch: %v", msg.Errors)
	}
	if len(msg.Commands) != len(m.Commands) {
		return fmt.Errorf("expected %d commands, got %d", len(m.Commands), len(msg.Commands))
	}
	for i, name := range m.Commands {
		if name == "" {
			if !msg.Commands[i].Placeholder() {
				return fmt.Errorf("command #%d: expected placeholder, got %s", i, msg.Commands[i].Name)
			}
			continue
		}
		if msg.Commands[i].Name != name {
			return fmt.Errorf("command #%d: expected %s, got %q", i, name, msg.Commands[i].Name)
		}
	}
	return nil
}
