package message

import (
	"errors"
	"fmt"
	"sync"

	"github.com/taoyao-code/meter-codec/internal/protocol/bitfield"
)

// MaxSegments 分段数字段 3 位
const MaxSegments = 7

// 分段标志字节：低 3 位序号，4~6 位总段数，最高位末段标志
var segmentFields = bitfield.MustFieldTable(map[string]bitfield.Field{
	"index": {BitCount: 3, StartBit: 0},
	"count": {BitCount: 3, StartBit: 4},
	"last":  {BitCount: 1, StartBit: 7},
})

var (
	ErrSegmentData     = errors.New("segment data is empty")
	ErrTooManySegments = errors.New("data needs more than 7 segments")
	ErrSegmentShort    = errors.New("segment shorter than 2 bytes")
	ErrSegmentIndex    = errors.New("segment index out of range")
	ErrSegmentMismatch = errors.New("segment count differs within session")
)

// Segment 多命令分段中的一段
type Segment struct {
	SessionID uint8  `json:"session_id" yaml:"session_id"`
	Index     int    `json:"index" yaml:"index"`
	Count     int    `json:"count" yaml:"count"`
	Last      bool   `json:"last" yaml:"last"`
	Data      []byte `json:"data" yaml:"data"`
}

// Bytes 序列化：sessionID(1) flags(1) data
func (s Segment) Bytes() []byte {
	last := uint32(0)
	if s.Last {
		last = 1
	}
	flags := segmentFields.Pack(map[string]uint32{
		"index": uint32(s.Index),
		"count": uint32(s.Count),
		"last":  last,
	})
	out := make([]byte, 0, 2+len(s.Data))
	out = append(out, s.SessionID, byte(flags))
	return append(out, s.Data...)
}

// ParseSegment 解析一段
func ParseSegment(data []byte) (Segment, error) {
	if len(data) < 2 {
		return Segment{}, ErrSegmentShort
	}
	f := segmentFields.Unpack(uint32(data[1]))
	return Segment{
		SessionID: data[0],
		Index:     int(f["index"]),
		Count:     int(f["count"]),
		Last:      f["last"] == 1,
		Data:      append([]byte{}, data[2:]...),
	}, nil
}

// Split 按 maxSegment 字节切分 data
func Split(sessionID uint8, data []byte, maxSegment int) ([]Segment, error) {
	if len(data) == 0 {
		return nil, ErrSegmentData
	}
	if maxSegment <= 0 {
		return nil, fmt.Errorf("invalid segment size %d", maxSegment)
	}
	count := (len(data) + maxSegment - 1) / maxSegment
	if count > MaxSegments {
		return nil, fmt.Errorf("%w: %d bytes / %d", ErrTooManySegments, len(data), maxSegment)
	}
	out := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		end := min((i+1)*maxSegment, len(data))
		out = append(out, Segment{
			SessionID: sessionID,
			Index:     i,
			Count:     count,
			Last:      i == count-1,
			Data:      append([]byte(nil), data[i*maxSegment:end]...),
		})
	}
	return out, nil
}

type pendingSession struct {
	count int
	parts map[int][]byte
}

// Reassembler 按会话收集分段，集齐后拼接
type Reassembler struct {
	mu       sync.Mutex
	sessions map[uint8]*pendingSession
}

func NewReassembler() *Reassembler {
	return &Reassembler{sessions: make(map[uint8]*pendingSession)}
}

// Add 加入一段；集齐时返回完整数据与 true。重复段以最后一次为准。
func (r *Reassembler) Add(s Segment) ([]byte, bool, error) {
	if s.Count <= 0 || s.Count > MaxSegments || s.Index < 0 || s.Index >= s.Count {
		return nil, false, fmt.Errorf("%w: %d/%d", ErrSegmentIndex, s.Index, s.Count)
	}
	if s.Last && s.Index != s.Count-1 {
		return nil, false, fmt.Errorf("%w: last flag on %d/%d", ErrSegmentIndex, s.Index, s.Count)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.sessions[s.SessionID]
	if !ok {
		p = &pendingSession{count: s.Count, parts: make(map[int][]byte, s.Count)}
		r.sessions[s.SessionID] = p
	}
	if p.count != s.Count {
		delete(r.sessions, s.SessionID)
		return nil, false, fmt.Errorf("%w: session %d had %d, got %d", ErrSegmentMismatch, s.SessionID, p.count, s.Count)
	}
	p.parts[s.Index] = s.Data
	if len(p.parts) < p.count {
		return nil, false, nil
	}

	var out []byte
	for i := 0; i < p.count; i++ {
		out = append(out, p.parts[i]...)
	}
	delete(r.sessions, s.SessionID)
	return out, true, nil
}

// Pending 未集齐的会话数
func (r *Reassembler) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Discard 丢弃某会话的已收分段
func (r *Reassembler) Discard(sessionID uint8) {
	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()
}
