package service

import (
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/meter-codec/internal/config"
	"github.com/taoyao-code/meter-codec/internal/metrics"
	"github.com/taoyao-code/meter-codec/internal/protocol/commands"
	"github.com/taoyao-code/meter-codec/internal/protocol/frame"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

const testKey = "000102030405060708090a0b0c0d0e0f"

func newTestService(t *testing.T, mutate func(*cfgpkg.CodecConfig)) (*CodecService, *metrics.CodecMetrics) {
	t.Helper()
	cfg := cfgpkg.CodecConfig{Direction: "auto", BytesFormat: "hex", MaxFrameLen: 256, HardwareType: -1}
	if mutate != nil {
		mutate(&cfg)
	}
	m := metrics.NewCodecMetrics(prometheus.NewRegistry())
	svc, err := NewCodecService(cfg, nil, m, zap.NewNop())
	require.NoError(t, err)
	return svc, m
}

func TestNewCodecService_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  cfgpkg.CodecConfig
	}{
		{"方向", cfgpkg.CodecConfig{Direction: "sideways", HardwareType: -1}},
		{"格式", cfgpkg.CodecConfig{BytesFormat: "octal", HardwareType: -1}},
		{"密钥非hex", cfgpkg.CodecConfig{AESKey: "zz", HardwareType: -1}},
		{"密钥长度", cfgpkg.CodecConfig{AESKey: "0011", HardwareType: -1}},
		{"硬件类型", cfgpkg.CodecConfig{HardwareType: 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodecService(tt.cfg, nil, nil, nil)
			assert.Error(t, err)
		})
	}
}

func TestDecodeMessage_Plain(t *testing.T) {
	svc, m := newTestService(t, nil)

	view, err := svc.DecodeMessage(MessageDecodeRequest{Data: "07 04 2d 1f 4e 80 aa"})
	require.NoError(t, err)
	assert.True(t, view.Valid)
	assert.True(t, view.Resolved)
	require.Len(t, view.Commands, 1)
	assert.Equal(t, "getTime", view.Commands[0].Name)
	assert.Equal(t, "uplink", view.Commands[0].Direction)
	assert.Equal(t, commands.TimeResponse{Seconds: 757026432}, view.Commands[0].Params)
	assert.Nil(t, view.ID)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessageDecodeTotal.WithLabelValues("plain", metrics.ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandTotal.WithLabelValues("uplink", "getTime", metrics.ResultOK)))
}

func TestDecodeMessage_ChecksumAndPlaceholder(t *testing.T) {
	svc, m := newTestService(t, nil)

	view, err := svc.DecodeMessage(MessageDecodeRequest{
		Data:           "07 00 33 01 aa 18 00 d2",
		MessageOptions: MessageOptions{Direction: "downlink"},
	})
	require.NoError(t, err)
	assert.True(t, view.Valid)
	assert.False(t, view.Resolved)
	require.Len(t, view.Commands, 3)
	assert.NotEmpty(t, view.Commands[1].Error)
	assert.Equal(t, "aa", view.Commands[1].Body)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CommandTotal.WithLabelValues("downlink", "unknown", "unknown")))

	// 篡改末字节
	view, err = svc.DecodeMessage(MessageDecodeRequest{
		Data:           "07 00 33 01 aa 18 00 d3",
		MessageOptions: MessageOptions{Direction: "downlink"},
	})
	require.NoError(t, err)
	assert.False(t, view.Valid)
	assert.NotEmpty(t, view.Errors)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ChecksumMismatchTotal.WithLabelValues("message")))
}

func TestDecodeMessage_HardwareContext(t *testing.T) {
	svc, m := newTestService(t, nil)

	_, err := svc.DecodeMessage(MessageDecodeRequest{
		Data:           "0c 02 2d 88 fe",
		MessageOptions: MessageOptions{Direction: "uplink"},
	})
	require.ErrorIs(t, err, message.ErrMandatoryContextMissing)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessageDecodeTotal.WithLabelValues("plain", metrics.ResultError)))

	hw := 1
	view, err := svc.DecodeMessage(MessageDecodeRequest{
		Data:           "0c 02 2d 88 fe",
		MessageOptions: MessageOptions{Direction: "uplink", HardwareType: &hw},
	})
	require.NoError(t, err)
	assert.Equal(t, commands.LastEventResponse{Sequence: 45, Flags: []string{"isConnectionLost", "isRebooted"}}, view.Commands[0].Params)

	// 配置默认硬件类型
	withHW, _ := newTestService(t, func(c *cfgpkg.CodecConfig) { c.HardwareType = 1 })
	view, err = withHW.DecodeMessage(MessageDecodeRequest{Data: "0c 02 2d 88 fe", MessageOptions: MessageOptions{Direction: "uplink"}})
	require.NoError(t, err)
	assert.True(t, view.Resolved)
}

func TestDecodeMessage_InvalidInput(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.DecodeMessage(MessageDecodeRequest{Data: "0g"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.DecodeMessage(MessageDecodeRequest{Data: "07 00 52", Format: "octal"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.DecodeMessage(MessageDecodeRequest{Data: "07 00 52", MessageOptions: MessageOptions{Direction: "sideways"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := 256
	_, err = svc.DecodeMessage(MessageDecodeRequest{Data: "07 00 52", MessageOptions: MessageOptions{HardwareType: &bad}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.DecodeMessage(MessageDecodeRequest{Data: "07 05 00 52"})
	assert.Error(t, err)
}

func TestEncodeMessage_ByNameAndFrame(t *testing.T) {
	svc, _ := newTestService(t, nil)

	res, err := svc.EncodeMessage(MessageEncodeRequest{
		Commands:  []CommandInput{{Name: "getTime"}},
		Direction: "downlink",
	})
	require.NoError(t, err)
	assert.Equal(t, "07 00 52", res.Data)
	assert.Empty(t, res.Frame)

	res, err = svc.EncodeMessage(MessageEncodeRequest{
		Commands: []CommandInput{
			{ID: commands.IDSetTime, Params: json.RawMessage(`{"sequence":5,"seconds":3600}`)},
			{Name: "getTime"},
		},
		Direction: "downlink",
		Frame:     true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Frame)
	require.NotNil(t, res.CRC)

	view, err := svc.DecodeFrame(FrameDecodeRequest{Data: res.Frame, Message: &MessageOptions{Direction: "downlink"}})
	require.NoError(t, err)
	assert.True(t, view.Valid)
	assert.Equal(t, res.Data, view.Content)
	require.NotNil(t, view.Message)
	require.Len(t, view.Message.Commands, 2)
	assert.Equal(t, commands.SetTimeRequest{Sequence: 5, Seconds: 3600}, view.Message.Commands[0].Params)
}

func TestEncodeMessage_Errors(t *testing.T) {
	svc, m := newTestService(t, nil)

	_, err := svc.EncodeMessage(MessageEncodeRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.EncodeMessage(MessageEncodeRequest{Commands: []CommandInput{{Name: "nope"}}})
	assert.ErrorIs(t, err, message.ErrUnknownCommand)

	_, err = svc.EncodeMessage(MessageEncodeRequest{
		Commands:  []CommandInput{{Name: "setTime", Params: json.RawMessage(`{"sequence":"x"}`)}},
		Direction: "downlink",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	// 加密级别但未配置密钥
	_, err = svc.EncodeMessage(MessageEncodeRequest{
		Commands:    []CommandInput{{Name: "getTime"}},
		Direction:   "downlink",
		Secure:      true,
		AccessLevel: "root",
	})
	assert.ErrorIs(t, err, message.ErrKeyRequired)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.MessageEncodeTotal.WithLabelValues("secure", metrics.ResultError)))

	_, err = svc.EncodeMessage(MessageEncodeRequest{
		Commands:    []CommandInput{{Name: "getTime"}},
		Secure:      true,
		AccessLevel: "superuser",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestEncodeMessage_RawBody(t *testing.T) {
	svc, _ := newTestService(t, nil)
	res, err := svc.EncodeMessage(MessageEncodeRequest{Commands: []CommandInput{{ID: 0x33, Body: "aa"}}})
	require.NoError(t, err)
	assert.Equal(t, "33 01 aa", res.Data[:8])
}

func TestSecureRoundTrip(t *testing.T) {
	svc, m := newTestService(t, func(c *cfgpkg.CodecConfig) { c.AESKey = testKey })

	for _, level := range []string{"unencrypted", "root", "readWrite", "readOnly"} {
		t.Run(level, func(t *testing.T) {
			res, err := svc.EncodeMessage(MessageEncodeRequest{
				Commands:    []CommandInput{{Name: "getTime", Params: json.RawMessage(`{"seconds":757026432}`)}},
				Direction:   "uplink",
				Secure:      true,
				MessageID:   9,
				AccessLevel: level,
			})
			require.NoError(t, err)

			view, err := svc.DecodeMessage(MessageDecodeRequest{
				Data:           res.Data,
				MessageOptions: MessageOptions{Secure: true, Direction: "uplink"},
			})
			require.NoError(t, err)
			assert.True(t, view.Valid)
			require.NotNil(t, view.ID)
			assert.Equal(t, uint8(9), *view.ID)
			assert.Equal(t, level, view.AccessLevel)
			require.Len(t, view.Commands, 1)
			assert.Equal(t, commands.TimeResponse{Seconds: 757026432}, view.Commands[0].Params)
		})
	}
	assert.Equal(t, float64(4), testutil.ToFloat64(m.MessageDecodeTotal.WithLabelValues("secure", metrics.ResultOK)))
}

func TestEncodeFrameAndScan(t *testing.T) {
	svc, m := newTestService(t, nil)

	a, err := svc.EncodeFrame(FrameEncodeRequest{Content: "07 00 52"})
	require.NoError(t, err)
	b, err := svc.EncodeFrame(FrameEncodeRequest{Content: "0c 02 2d 88 fe"})
	require.NoError(t, err)

	_, err = svc.EncodeFrame(FrameEncodeRequest{Content: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	res, err := svc.ScanFrames(FrameScanRequest{Stream: "01 02 " + a.Frame + " " + b.Frame})
	require.NoError(t, err)
	require.Len(t, res.Frames, 2)
	assert.Equal(t, "07 00 52", res.Frames[0].Content)
	assert.Equal(t, "0c 02 2d 88 fe", res.Frames[1].Content)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.FrameDecodeTotal.WithLabelValues(metrics.ResultOK)))
}

func TestDecodeFrame_Invalid(t *testing.T) {
	svc, m := newTestService(t, nil)

	enc, err := svc.EncodeFrame(FrameEncodeRequest{Content: "07 00 52"})
	require.NoError(t, err)
	wire := []byte(enc.Frame)
	// 改动 CRC 低字节的一个 hex 位（倒数第二个字节位于标志前）
	idx := len(wire) - 4
	if wire[idx] == '0' {
		wire[idx] = '1'
	} else {
		wire[idx] = '0'
	}

	view, err := svc.DecodeFrame(FrameDecodeRequest{Data: string(wire), Message: &MessageOptions{}})
	require.NoError(t, err)
	assert.False(t, view.Valid)
	assert.Nil(t, view.Message)

	view, err = svc.DecodeFrame(FrameDecodeRequest{Data: "01 02 03"})
	require.NoError(t, err)
	assert.False(t, view.Valid)
	assert.Nil(t, view.CRC.Expected)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.FrameDecodeTotal.WithLabelValues(metrics.ResultInvalid)))
}

func TestSegmentReassembly(t *testing.T) {
	svc, _ := newTestService(t, nil)

	inner := []byte{0x07, 0x04, 0x2d, 0x1f, 0x4e, 0x80, 0xaa}
	segs, err := message.Split(3, inner, 4)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	codec := message.NewCodec(svc.tables)
	for i, seg := range segs {
		data, err := codec.Encode([]message.Outgoing{{ID: commands.IDDataSegment, Params: seg}}, message.Uplink)
		require.NoError(t, err)

		view, err := svc.DecodeMessage(MessageDecodeRequest{Data: svc.format.String(data), MessageOptions: MessageOptions{Direction: "uplink"}})
		require.NoError(t, err)
		require.True(t, view.Valid)

		if i < len(segs)-1 {
			assert.Empty(t, view.Reassembled)
			assert.Equal(t, 1, svc.PendingSegments())
			continue
		}
		require.Len(t, view.Reassembled, 1)
		assert.Equal(t, "getTime", view.Reassembled[0].Commands[0].Name)
		assert.Equal(t, 0, svc.PendingSegments())
	}
}

func TestCommands(t *testing.T) {
	svc, _ := newTestService(t, nil)

	all := svc.Commands(message.Auto)
	up := svc.Commands(message.Uplink)
	down := svc.Commands(message.Downlink)
	assert.Equal(t, len(all), len(up)+len(down))
	assert.Equal(t, CommandInfo{ID: commands.IDSetTime, Name: "setTime", Direction: "downlink", Encodable: true}, all[0])

	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].ID, all[i].ID)
	}
}

func TestFrameSevenBitOverride(t *testing.T) {
	svc, _ := newTestService(t, func(c *cfgpkg.CodecConfig) { c.SevenBit = true })
	off := false

	seven, err := svc.EncodeFrame(FrameEncodeRequest{Content: "80 fe 7c 11"})
	require.NoError(t, err)
	assert.Equal(t, "7e 7c 00 7c 7d 5e 7d 5c 7d 31 7c 73 15 7e", seven.Frame)

	plain, err := svc.EncodeFrame(FrameEncodeRequest{Content: "80 fe 7c 11", SevenBit: &off})
	require.NoError(t, err)
	assert.Equal(t, "7e 80 fe 7c 7d 31 f3 15 7e", plain.Frame)

	fr := frame.Decode([]byte{0x7e, 0x80, 0xfe, 0x7c, 0x7d, 0x31, 0xf3, 0x15, 0x7e})
	assert.True(t, fr.Valid)
}

func TestSelfTest(t *testing.T) {
	svc, _ := newTestService(t, nil)
	n, err := svc.SelfTest()
	require.NoError(t, err)
	assert.Greater(t, n, 10)

	// 空命令表无法通过
	empty, err := NewCodecService(cfgpkg.CodecConfig{HardwareType: -1}, message.NewTables(), nil, nil)
	require.NoError(t, err)
	_, err = empty.SelfTest()
	assert.ErrorIs(t, err, ErrSelfTest)
}
