package frame

import (
	"bytes"

	"go.uber.org/zap"
)

// DefaultMaxFrameLen 单帧线上字节数上限
const DefaultMaxFrameLen = 1024

// Scanner 处理半包/粘包的流式拆帧器：在标志对之间切分并解码
type Scanner struct {
	buf         []byte
	maxFrameLen int // 保护上限，避免畸形数据占用过多内存
	opts        []Option
	logger      *zap.Logger
	dropped     int
}

// NewScanner 创建流式拆帧器
func NewScanner(maxFrameLen int, opts ...Option) *Scanner {
	if maxFrameLen <= 0 {
		maxFrameLen = DefaultMaxFrameLen
	}
	return &Scanner{maxFrameLen: maxFrameLen, opts: opts, logger: zap.NewNop()}
}

// SetLogger 设置日志
func (s *Scanner) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Dropped 累计丢弃的候选帧数
func (s *Scanner) Dropped() int { return s.dropped }

// Buffered 当前缓存的未完成字节数
func (s *Scanner) Buffered() int { return len(s.buf) }

// Feed 追加数据并尽可能解出多帧；只返回校验通过的帧
func (s *Scanner) Feed(p []byte) []Frame {
	if len(p) == 0 {
		return nil
	}
	s.buf = append(s.buf, p...)
	var frames []Frame

	for {
		start := bytes.IndexByte(s.buf, Marker)
		if start < 0 {
			// 无标志，清空缓冲避免无界增长
			s.buf = s.buf[:0]
			return frames
		}
		if start > 0 {
			// 丢弃无效前缀
			s.buf = s.buf[start:]
		}

		end := bytes.IndexByte(s.buf[1:], Marker)
		if end < 0 {
			if len(s.buf) > s.maxFrameLen {
				s.logger.Warn("frame exceeds max length, resync", zap.Int("buffered", len(s.buf)), zap.Int("max", s.maxFrameLen))
				s.dropped++
				s.buf = s.buf[1:]
				continue
			}
			// 半包，等待更多
			return frames
		}
		end++ // 相对 s.buf 的位置

		if end == 1 {
			// 连续两个标志：前一个是上一帧的结束，后一个作为新起点
			s.buf = s.buf[1:]
			continue
		}

		candidate := s.buf[:end+1]
		if len(candidate) > s.maxFrameLen {
			s.logger.Warn("frame exceeds max length, dropped", zap.Int("len", len(candidate)))
			s.dropped++
			s.buf = s.buf[end:]
			continue
		}

		fr := Decode(candidate, s.opts...)
		if !fr.Valid {
			s.logger.Debug("invalid frame dropped",
				zap.Int("len", len(candidate)),
				zap.Uint16("crc_actual", fr.CRC.Actual),
			)
			s.dropped++
			// 结束标志可能是下一帧的起始标志
			s.buf = s.buf[end:]
			continue
		}
		frames = append(frames, fr)
		// 结束标志保留，兼容相邻帧共用标志
		s.buf = s.buf[end:]
	}
}

// Reset 清空缓存
func (s *Scanner) Reset() {
	s.buf = s.buf[:0]
}
