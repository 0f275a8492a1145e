package commands

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/meter-codec/internal/protocol/buffer"
	"github.com/taoyao-code/meter-codec/internal/protocol/message"
)

func loadExamples(t *testing.T) *Examples {
	t.Helper()
	ex, err := BuiltinExamples()
	require.NoError(t, err)
	require.NotEmpty(t, ex.Commands)
	return ex
}

func TestExamples_CommandRoundTrip(t *testing.T) {
	ts := NewTables()
	for _, ex := range loadExamples(t).Commands {
		t.Run(fmt.Sprintf("%s/%s/%s", ex.Name, ex.Direction, ex.Body), func(t *testing.T) {
			cmd, ok := ts.Table(ex.Direction).Lookup(ex.ID)
			require.True(t, ok)
			assert.Equal(t, ex.Name, cmd.Name)

			body, err := ex.BodyBytes()
			require.NoError(t, err)
			expected, err := ex.DecodeParams()
			require.NoError(t, err)

			got, err := cmd.Decode(body, ex.Context())
			require.NoError(t, err)
			assert.Equal(t, expected, got)

			encoded, err := cmd.Encode(expected)
			require.NoError(t, err)
			assert.Equal(t, body, encoded)
		})
	}
}

func TestExamples_ThroughMessageCodec(t *testing.T) {
	codec := message.NewCodec(NewTables())
	for _, ex := range loadExamples(t).Commands {
		expected, err := ex.DecodeParams()
		require.NoError(t, err)

		data, err := codec.Encode([]message.Outgoing{{ID: ex.ID, Params: expected}}, ex.Direction)
		require.NoError(t, err, ex.Name)

		msg, err := codec.Decode(data, message.DecodeOptions{Direction: ex.Direction, Context: ex.Context()})
		require.NoError(t, err, ex.Name)
		assert.True(t, msg.Valid)
		require.Len(t, msg.Commands, 1)
		assert.NoError(t, msg.Commands[0].Err)
		assert.Equal(t, expected, msg.Commands[0].Params, ex.Name)
	}
}

func TestExamples_Messages(t *testing.T) {
	codec := message.NewCodec(NewTables())
	for _, ex := range loadExamples(t).Messages {
		t.Run(ex.Name, func(t *testing.T) {
			data, err := ex.Bytes()
			require.NoError(t, err)

			msg, err := codec.Decode(data, message.DecodeOptions{Direction: ex.Direction, Context: ex.Context()})
			require.NoError(t, err)
			assert.True(t, msg.Valid)
			require.Len(t, msg.Commands, len(ex.Commands))
			for i, name := range ex.Commands {
				if name == "" {
					assert.ErrorIs(t, msg.Commands[i].Err, message.ErrUnknownCommand)
					continue
				}
				assert.Equal(t, name, msg.Commands[i].Name)
			}
		})
	}
}

func TestLastEvent_RequiresHardwareType(t *testing.T) {
	codec := message.NewCodec(NewTables())
	_, err := codec.Decode([]byte{0x0C, 0x02, 0x2D, 0x88, 0xFE}, message.DecodeOptions{})
	assert.ErrorIs(t, err, message.ErrMandatoryContextMissing)
}

func TestEncodeLastEvent(t *testing.T) {
	p := LastEventResponse{Sequence: 1, Flags: []string{"isBatteryLow"}}

	single, err := EncodeLastEvent(p, HardwareSingleChannel)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x01}, single)

	multi, err := EncodeLastEvent(p, HardwareMultiChannel)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x00, 0x01}, multi)

	_, err = EncodeLastEvent(LastEventResponse{Flags: []string{"isFirstChannelInactive"}}, HardwareSingleChannel)
	assert.ErrorIs(t, err, ErrUnknownFlag)
}

func TestDecoders_RejectMalformedBodies(t *testing.T) {
	ts := NewTables()
	tests := []struct {
		name string
		dir  message.Direction
		id   uint16
		body []byte
	}{
		{"getTime 多余字节", message.Uplink, IDGetTime, []byte{0, 0, 0, 1, 2}},
		{"getTime 长度不足", message.Uplink, IDGetTime, []byte{0, 0}},
		{"getTime 请求非空", message.Downlink, IDGetTime, []byte{0}},
		{"setTime 长度不足", message.Downlink, IDSetTime, []byte{1, 0, 0}},
		{"电池标签越界", message.Uplink, IDGetBatteryStatus, []byte{0, 0, 0x60, 0x40, 0xFB, 0x05, 'o'}},
		{"分段过短", message.Uplink, IDDataSegment, []byte{0x11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, ok := ts.Table(tt.dir).Lookup(tt.id)
			require.True(t, ok)
			_, err := cmd.Decode(tt.body, &message.Context{})
			assert.Error(t, err)
		})
	}
}

func TestEncoders_RejectWrongParams(t *testing.T) {
	ts := NewTables()
	cmd, _ := ts.Uplink.Lookup(IDGetTime)
	_, err := cmd.Encode(SetTimeRequest{})
	assert.ErrorIs(t, err, ErrParams)

	// 指针参数同样接受
	body, err := cmd.Encode(&TimeResponse{Seconds: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 1}, body)

	req, _ := ts.Downlink.Lookup(IDGetArchiveDays)
	_, err = req.Encode(ArchiveDaysRequest{StartDate: buffer.Date{Year: 1999, Month: 1, Day: 1}})
	assert.Error(t, err)
}

func TestTimeResponse_Time(t *testing.T) {
	r := TimeResponse{Seconds: 757026432}
	assert.Equal(t, time.Date(2023, 12, 27, 21, 7, 12, 0, time.UTC), r.Time())
}

func TestNewParams(t *testing.T) {
	p, ok := NewParams(message.Uplink, IDLastEvent)
	require.True(t, ok)
	assert.IsType(t, &LastEventResponse{}, p)

	_, ok = NewParams(message.Downlink, IDLastEvent)
	assert.False(t, ok)

	ts := NewTables()
	assert.Equal(t, len(downlink), ts.Downlink.Len())
	assert.Equal(t, len(uplink), ts.Uplink.Len())
}
