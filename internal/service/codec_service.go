// Package service 编解码服务：将配置、命令表与指标组合成面向 HTTP 边界的操作。
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	"github.com/taoyao-code/meter-codec/internal/metrics"
	"github.com/taoyao-code/meter-codec/internal/protocol/bytesfmt"
	"github.com/taoyao-code/meter-codec/internal/protocol/commands"
	"github.com/taoyao-code/meter-codec/internal/protocol/frame"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

// ErrInvalidInput 请求参数无法解析（文本格式、方向、访问级别、参数 JSON 等）
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// CodecService 编解码服务
type CodecService struct {
	tables       *message.Tables
	codec        *message.Codec
	secure       *message.SecureCodec
	reassembler  *message.Reassembler
	format       bytesfmt.Format
	direction    message.Direction
	sevenBit     bool
	maxFrameLen  int
	hardwareType *uint8
	metrics      *metrics.CodecMetrics
	logger       *zap.Logger
}

// NewCodecService 根据配置创建服务；tables 为 nil 时使用参考命令集，m 可为 nil
func NewCodecService(cfg cfgpkg.CodecConfig, tables *message.Tables, m *metrics.CodecMetrics, logger *zap.Logger) (*CodecService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = commands.NewTables()
	}

	dir, err := message.ParseDirection(cfg.Direction)
	if err != nil {
		return nil, fmt.Errorf("codec.direction: %w", err)
	}
	kind, err := bytesfmt.ParseKind(cfg.BytesFormat)
	if err != nil {
		return nil, fmt.Errorf("codec.bytesFormat: %w", err)
	}
	format := bytesfmt.DefaultFormat
	format.Kind = kind

	var key []byte
	if cfg.AESKey != "" {
		key, err = bytesfmt.ParseHex(cfg.AESKey)
		if err != nil {
			return nil, fmt.Errorf("codec.aesKey: %w", err)
		}
	}
	secure, err := message.NewSecureCodec(tables, key, message.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("codec.aesKey: %w", err)
	}

	var hw *uint8
	if cfg.HardwareType >= 0 {
		if cfg.HardwareType > 0xFF {
			return nil, fmt.Errorf("codec.hardwareType: %d out of range", cfg.HardwareType)
		}
		v := uint8(cfg.HardwareType)
		hw = &v
	}

	maxFrameLen := cfg.MaxFrameLen
	if maxFrameLen <= 0 {
		maxFrameLen = frame.DefaultMaxFrameLen
	}

	return &CodecService{
		tables:       tables,
		codec:        message.NewCodec(tables, message.WithLogger(logger)),
		secure:       secure,
		reassembler:  message.NewReassembler(),
		format:       format,
		direction:    dir,
		sevenBit:     cfg.SevenBit,
		maxFrameLen:  maxFrameLen,
		hardwareType: hw,
		metrics:      m,
		logger:       logger,
	}, nil
}

// PendingSegments 尚未集齐分段的会话数
func (s *CodecService) PendingSegments() int {
	return s.reassembler.Pending()
}

func (s *CodecService) formatOf(name string) (bytesfmt.Format, error) {
	if name == "" {
		return s.format, nil
	}
	kind, err := bytesfmt.ParseKind(name)
	if err != nil {
		return bytesfmt.Format{}, invalidf("%v", err)
	}
	f := s.format
	f.Kind = kind
	return f, nil
}

func (s *CodecService) parseBytes(f bytesfmt.Format, field, text string) ([]byte, error) {
	data, err := f.Parse(text)
	if err != nil {
		return nil, invalidf("%s: %v", field, err)
	}
	return data, nil
}

func (s *CodecService) frameOptions(sevenBit *bool) []frame.Option {
	enabled := s.sevenBit
	if sevenBit != nil {
		enabled = *sevenBit
	}
	return []frame.Option{frame.WithSevenBitMode(enabled)}
}

func (s *CodecService) directionOf(name string) (message.Direction, error) {
	if name == "" {
		return s.direction, nil
	}
	dir, err := message.ParseDirection(name)
	if err != nil {
		return message.Auto, invalidf("%v", err)
	}
	return dir, nil
}

func (s *CodecService) decodeOptions(o MessageOptions) (message.DecodeOptions, error) {
	dir, err := s.directionOf(o.Direction)
	if err != nil {
		return message.DecodeOptions{}, err
	}
	ctx := &message.Context{HardwareType: s.hardwareType}
	if o.HardwareType != nil {
		if *o.HardwareType < 0 || *o.HardwareType > 0xFF {
			return message.DecodeOptions{}, invalidf("hardware_type %d out of range", *o.HardwareType)
		}
		hw := uint8(*o.HardwareType)
		ctx.HardwareType = &hw
	}
	return message.DecodeOptions{Direction: dir, Context: ctx}, nil
}

// DecodeFrame 解码链路帧；帧有效且请求了消息选项时继续解码帧内容
func (s *CodecService) DecodeFrame(req FrameDecodeRequest) (*FrameView, error) {
	f, err := s.formatOf(req.Format)
	if err != nil {
		return nil, err
	}
	wire, err := s.parseBytes(f, "data", req.Data)
	if err != nil {
		return nil, err
	}
	s.observeBytes(len(wire))

	fr := frame.Decode(wire, s.frameOptions(req.SevenBit)...)
	s.recordFrame(fr)
	view := s.frameView(f, fr)
	if !fr.Valid || req.Message == nil {
		return view, nil
	}

	view.Message, err = s.decodeMessage(f, fr.Content, *req.Message)
	if err != nil {
		return nil, err
	}
	return view, nil
}

// EncodeFrame 组帧
func (s *CodecService) EncodeFrame(req FrameEncodeRequest) (*EncodeResult, error) {
	f, err := s.formatOf(req.Format)
	if err != nil {
		return nil, err
	}
	content, err := s.parseBytes(f, "content", req.Content)
	if err != nil {
		return nil, err
	}
	fr := frame.Encode(content, s.frameOptions(req.SevenBit)...)
	if !fr.Valid {
		return nil, invalidf("content is empty")
	}
	if s.metrics != nil {
		s.metrics.FrameEncodeTotal.Inc()
	}
	crc := fr.CRC.Actual
	return &EncodeResult{Data: f.String(fr.Content), Frame: f.String(fr.Wire), CRC: &crc}, nil
}

// ScanFrames 从字节流拆出全部有效帧，无效片段计入 Dropped
func (s *CodecService) ScanFrames(req FrameScanRequest) (*ScanResult, error) {
	f, err := s.formatOf(req.Format)
	if err != nil {
		return nil, err
	}
	stream, err := s.parseBytes(f, "stream", req.Stream)
	if err != nil {
		return nil, err
	}
	s.observeBytes(len(stream))

	sc := frame.NewScanner(s.maxFrameLen, s.frameOptions(req.SevenBit)...)
	sc.SetLogger(s.logger)
	frames := sc.Feed(stream)

	out := &ScanResult{Frames: make([]FrameView, 0, len(frames)), Dropped: sc.Dropped(), Buffered: sc.Buffered()}
	for _, fr := range frames {
		s.recordFrame(fr)
		out.Frames = append(out.Frames, *s.frameView(f, fr))
	}
	if s.metrics != nil && sc.Dropped() > 0 {
		s.metrics.FrameDecodeTotal.WithLabelValues(metrics.ResultInvalid).Add(float64(sc.Dropped()))
	}
	return out, nil
}

// DecodeMessage 解码明文或加密消息
func (s *CodecService) DecodeMessage(req MessageDecodeRequest) (*MessageView, error) {
	f, err := s.formatOf(req.Format)
	if err != nil {
		return nil, err
	}
	data, err := s.parseBytes(f, "data", req.Data)
	if err != nil {
		return nil, err
	}
	s.observeBytes(len(data))
	return s.decodeMessage(f, data, req.MessageOptions)
}

func (s *CodecService) decodeMessage(f bytesfmt.Format, data []byte, o MessageOptions) (*MessageView, error) {
	opts, err := s.decodeOptions(o)
	if err != nil {
		return nil, err
	}
	kind := "plain"
	decode := s.codec.Decode
	if o.Secure {
		kind = "secure"
		decode = s.secure.Decode
	}

	msg, err := decode(data, opts)
	if err != nil {
		s.countMessage(kind, metrics.ResultError)
		s.logger.Debug("message decode failed", zap.String("kind", kind), zap.Error(err))
		return nil, err
	}
	result := metrics.ResultOK
	if !msg.Valid {
		result = metrics.ResultInvalid
		if msg.LRC.Expected != nil && *msg.LRC.Expected != msg.LRC.Actual && s.metrics != nil {
			s.metrics.ChecksumMismatchTotal.WithLabelValues("message").Inc()
		}
	}
	s.countMessage(kind, result)
	s.recordCommands(msg)

	view := s.messageView(f, msg, o.Secure)
	// 分段重组在校验通过后进行，重组结果按明文消息解码
	if msg.Valid {
		view.Reassembled = s.reassemble(f, msg, opts)
	}
	return view, nil
}

func (s *CodecService) reassemble(f bytesfmt.Format, msg *message.Message, opts message.DecodeOptions) []*MessageView {
	var out []*MessageView
	for _, e := range msg.Commands {
		seg, ok := e.Params.(message.Segment)
		if !ok {
			continue
		}
		data, complete, err := s.reassembler.Add(seg)
		if err != nil {
			s.logger.Warn("segment rejected", zap.Uint8("session", seg.SessionID), zap.Error(err))
			continue
		}
		if !complete {
			continue
		}
		inner, err := s.codec.Decode(data, opts)
		if err != nil {
			s.logger.Warn("reassembled message decode failed", zap.Uint8("session", seg.SessionID), zap.Error(err))
			continue
		}
		s.recordCommands(inner)
		out = append(out, s.messageView(f, inner, false))
	}
	return out
}

// EncodeMessage 编码明文或加密消息，可选封装为链路帧
func (s *CodecService) EncodeMessage(req MessageEncodeRequest) (*EncodeResult, error) {
	f, err := s.formatOf(req.Format)
	if err != nil {
		return nil, err
	}
	dir, err := s.directionOf(req.Direction)
	if err != nil {
		return nil, err
	}
	if len(req.Commands) == 0 {
		return nil, invalidf("commands is empty")
	}
	cmds := make([]message.Outgoing, 0, len(req.Commands))
	for i, in := range req.Commands {
		o, err := s.outgoing(f, dir, in)
		if err != nil {
			return nil, fmt.Errorf("commands[%d]: %w", i, err)
		}
		cmds = append(cmds, o)
	}

	kind := "plain"
	var data []byte
	if req.Secure {
		kind = "secure"
		level := message.Unencrypted
		if req.AccessLevel != "" {
			if level, err = message.ParseAccessLevel(req.AccessLevel); err != nil {
				return nil, invalidf("%v", err)
			}
		}
		data, err = s.secure.Encode(message.SecureHeader{MessageID: req.MessageID, AccessLevel: level}, cmds, dir)
	} else {
		data, err = s.codec.Encode(cmds, dir)
	}
	if err != nil {
		s.countEncode(kind, metrics.ResultError)
		return nil, err
	}
	s.countEncode(kind, metrics.ResultOK)

	out := &EncodeResult{Data: f.String(data)}
	if req.Frame {
		fr := frame.Encode(data, s.frameOptions(req.SevenBit)...)
		crc := fr.CRC.Actual
		out.Frame = f.String(fr.Wire)
		out.CRC = &crc
		if s.metrics != nil {
			s.metrics.FrameEncodeTotal.Inc()
		}
	}
	return out, nil
}

// outgoing 将请求命令转换为编码输入；参数 JSON 反序列化为命令的参数类型
func (s *CodecService) outgoing(f bytesfmt.Format, dir message.Direction, in CommandInput) (message.Outgoing, error) {
	o := message.Outgoing{ID: in.ID, Name: in.Name}
	if in.Body != "" {
		body, err := s.parseBytes(f, "body", in.Body)
		if err != nil {
			return o, err
		}
		o.Body = body
		return o, nil
	}

	cmd, cmdDir, ok := s.lookup(dir, in.ID, in.Name)
	if !ok {
		return o, fmt.Errorf("%w: id=0x%X name=%q", message.ErrUnknownCommand, in.ID, in.Name)
	}
	o.ID, o.Name = cmd.ID, ""
	params, ok := commands.NewParams(cmdDir, cmd.ID)
	if !ok {
		return o, fmt.Errorf("%w: %s has no parameter type", message.ErrNoEncoder, cmd.Name)
	}
	if len(in.Params) > 0 && string(in.Params) != "null" {
		if err := json.Unmarshal(in.Params, params); err != nil {
			return o, invalidf("params for %s: %v", cmd.Name, err)
		}
	}
	o.Params = params
	return o, nil
}

// lookup 按方向查表；Auto 先下行后上行，与编码顺序一致
func (s *CodecService) lookup(dir message.Direction, id uint16, name string) (message.Command, message.Direction, bool) {
	dirs := []message.Direction{dir}
	if dir == message.Auto {
		dirs = []message.Direction{message.Downlink, message.Uplink}
	}
	for _, d := range dirs {
		t := s.tables.Table(d)
		if t == nil {
			continue
		}
		var (
			cmd message.Command
			ok  bool
		)
		if name != "" {
			cmd, ok = t.LookupName(name)
		} else {
			cmd, ok = t.Lookup(id)
		}
		if ok {
			return cmd, d, true
		}
	}
	return message.Command{}, dir, false
}

// Commands 列出已注册命令，按 id、方向排序
func (s *CodecService) Commands(dir message.Direction) []CommandInfo {
	var out []CommandInfo
	for _, d := range []message.Direction{message.Downlink, message.Uplink} {
		if dir != message.Auto && dir != d {
			continue
		}
		for _, c := range s.tables.Table(d).Commands() {
			out = append(out, CommandInfo{ID: c.ID, Name: c.Name, Direction: d.String(), Encodable: c.Encode != nil})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ID != out[j].ID {
			return out[i].ID < out[j].ID
		}
		return out[i].Direction < out[j].Direction
	})
	return out
}

func (s *CodecService) frameView(f bytesfmt.Format, fr frame.Frame) *FrameView {
	return &FrameView{
		Content: f.String(fr.Content),
		Wire:    f.String(fr.Wire),
		CRC:     CRCView{Expected: fr.CRC.Expected, Actual: fr.CRC.Actual},
		Valid:   fr.Valid,
	}
}

func (s *CodecService) messageView(f bytesfmt.Format, msg *message.Message, secure bool) *MessageView {
	view := &MessageView{
		Commands: make([]EntryView, 0, len(msg.Commands)),
		LRC:      msg.LRC,
		Valid:    msg.Valid,
		Resolved: msg.Resolved(),
	}
	if secure {
		id := msg.ID
		view.ID = &id
		view.AccessLevel = msg.AccessLevel.String()
	}
	for _, e := range msg.Commands {
		ev := EntryView{
			ID:        e.Header.ID,
			Name:      e.Name,
			Direction: e.Direction.String(),
			Body:      f.String(e.Body),
			Params:    e.Params,
		}
		if e.Err != nil {
			ev.Error = e.Err.Error()
		}
		view.Commands = append(view.Commands, ev)
	}
	for _, err := range msg.Errors {
		view.Errors = append(view.Errors, err.Error())
	}
	return view
}

func (s *CodecService) observeBytes(n int) {
	if s.metrics != nil {
		s.metrics.BytesDecoded.Observe(float64(n))
	}
}

func (s *CodecService) recordFrame(fr frame.Frame) {
	if s.metrics == nil {
		return
	}
	if fr.Valid {
		s.metrics.FrameDecodeTotal.WithLabelValues(metrics.ResultOK).Inc()
		return
	}
	s.metrics.FrameDecodeTotal.WithLabelValues(metrics.ResultInvalid).Inc()
	if fr.CRC.Expected != nil {
		s.metrics.ChecksumMismatchTotal.WithLabelValues("frame").Inc()
	}
}

func (s *CodecService) countMessage(kind, result string) {
	if s.metrics != nil {
		s.metrics.MessageDecodeTotal.WithLabelValues(kind, result).Inc()
	}
}

func (s *CodecService) countEncode(kind, result string) {
	if s.metrics != nil {
		s.metrics.MessageEncodeTotal.WithLabelValues(kind, result).Inc()
	}
}

func (s *CodecService) recordCommands(msg *message.Message) {
	if s.metrics == nil {
		return
	}
	for _, e := range msg.Commands {
		name := e.Name
		result := metrics.ResultOK
		switch {
		case errors.Is(e.Err, message.ErrUnknownCommand):
			name, result = "unknown", "unknown"
		case e.Err != nil:
			result = metrics.ResultError
		}
		if name == "" {
			name = fmt.Sprintf("0x%X", e.Header.ID)
		}
		s.metrics.CommandTotal.WithLabelValues(e.Direction.String(), name, result).Inc()
	}
}
