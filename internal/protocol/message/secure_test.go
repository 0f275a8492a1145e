package message

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taoyao-code/meter-codec/internal/protocol/checksum"
)

var testKey = []byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F,
}

func TestPaddingSize(t *testing.T) {
	for n := 0; n < 80; n++ {
		pad := PaddingSize(n)
		assert.GreaterOrEqual(t, pad, 0)
		assert.Less(t, pad, 16)
		assert.Zero(t, (n+pad+1)%16, "n=%d", n)
	}
	assert.Equal(t, 0, PaddingSize(15))
	assert.Equal(t, 15, PaddingSize(16))
}

func TestSecure_RoundTripAllLevels(t *testing.T) {
	s, err := NewSecureCodec(testTables(), testKey)
	require.NoError(t, err)

	cmds := []Outgoing{
		{ID: 0x02, Params: []byte{0x01, 0x00, 0x00, 0x0E, 0x10}},
		{ID: 0x07},
	}
	for _, level := range []AccessLevel{Unencrypted, Root, ReadWrite, ReadOnly} {
		t.Run(level.String(), func(t *testing.T) {
			wire, err := s.Encode(SecureHeader{MessageID: 0x2A, AccessLevel: level}, cmds, Downlink)
			require.NoError(t, err)
			assert.Equal(t, byte(0x2A), wire[0])
			assert.Equal(t, byte(level), wire[1])

			payload := wire[2:]
			if level.Encrypted() {
				assert.Zero(t, len(payload)%16)
				assert.False(t, bytes.Contains(payload, []byte{0x02, 0x05, 0x01}), "命令明文不应出现在密文中")
			} else {
				assert.Equal(t, byte(level), payload[0])
				assert.NoError(t, checksum.VerifyLRC8(payload))
			}

			msg, err := s.Decode(wire, DecodeOptions{Direction: Downlink})
			require.NoError(t, err)
			assert.True(t, msg.Valid)
			assert.Empty(t, msg.Errors)
			assert.Equal(t, uint8(0x2A), msg.ID)
			assert.Equal(t, level, msg.AccessLevel)
			require.Len(t, msg.Commands, 2)
			assert.Equal(t, "setTime", msg.Commands[0].Name)
			assert.Equal(t, "getTime", msg.Commands[1].Name)
		})
	}
}

func TestSecure_UnencryptedLayout(t *testing.T) {
	s, err := NewSecureCodec(testTables(), nil)
	require.NoError(t, err)

	wire, err := s.Encode(SecureHeader{MessageID: 1, AccessLevel: Unencrypted}, []Outgoing{{ID: 0x07}}, Downlink)
	require.NoError(t, err)
	plain := []byte{0x10, 0x07, 0x00, 0x00}
	expected := append([]byte{0x01, 0x10}, plain...)
	expected = append(expected, checksum.LRC8Default(plain))
	assert.Equal(t, expected, wire)
}

func TestSecure_AccessLevelMismatch(t *testing.T) {
	s, err := NewSecureCodec(testTables(), nil)
	require.NoError(t, err)

	// 外层 unencrypted，内层 readWrite
	plain := []byte{byte(ReadWrite), 0x07, 0x00, 0x00}
	wire := append([]byte{0x05, byte(Unencrypted)}, plain...)
	wire = append(wire, checksum.LRC8Default(plain))

	msg, err := s.Decode(wire, DecodeOptions{Direction: Downlink})
	require.NoError(t, err)
	assert.False(t, msg.Valid)
	require.Len(t, msg.Errors, 1)
	assert.ErrorIs(t, msg.Errors[0], ErrAccessLevelMismatch)
	require.Len(t, msg.Commands, 1, "不一致时仍继续解析")
	assert.Equal(t, "getTime", msg.Commands[0].Name)
}

func TestSecure_MissingEndMarker(t *testing.T) {
	s, _ := NewSecureCodec(testTables(), nil)
	plain := []byte{byte(Unencrypted), 0x07, 0x00}
	wire := append([]byte{0x05, byte(Unencrypted)}, plain...)
	wire = append(wire, checksum.LRC8Default(plain))

	msg, err := s.Decode(wire, DecodeOptions{Direction: Downlink})
	require.NoError(t, err)
	assert.False(t, msg.Valid)
	assert.ErrorIs(t, msg.Errors[0], ErrMissingEndMarker)
	assert.Len(t, msg.Commands, 1)
}

func TestSecure_Errors(t *testing.T) {
	noKey, err := NewSecureCodec(testTables(), nil)
	require.NoError(t, err)

	_, err = noKey.Encode(SecureHeader{AccessLevel: ReadWrite}, nil, Downlink)
	assert.ErrorIs(t, err, ErrKeyRequired)

	_, err = noKey.Decode(append([]byte{0x01, byte(ReadOnly)}, make([]byte, 16)...), DecodeOptions{})
	assert.ErrorIs(t, err, ErrKeyRequired)

	_, err = NewSecureCodec(testTables(), []byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrBadKeySize)

	withKey, err := NewSecureCodec(testTables(), testKey)
	require.NoError(t, err)

	_, err = withKey.Decode(append([]byte{0x01, byte(Root)}, make([]byte, 15)...), DecodeOptions{})
	assert.ErrorIs(t, err, ErrBadBlockSize)

	_, err = withKey.Decode([]byte{0x01, byte(Root)}, DecodeOptions{})
	assert.ErrorIs(t, err, ErrBadBlockSize)

	_, err = withKey.Encode(SecureHeader{AccessLevel: AccessLevel(0x07)}, nil, Downlink)
	assert.ErrorIs(t, err, ErrAccessLevel)
}

func TestSecure_WrongKey(t *testing.T) {
	enc, err := NewSecureCodec(testTables(), testKey)
	require.NoError(t, err)
	wire, err := enc.Encode(SecureHeader{MessageID: 9, AccessLevel: ReadWrite}, []Outgoing{{ID: 0x07}}, Downlink)
	require.NoError(t, err)

	other := bytes.Repeat([]byte{0xA5}, KeySize)
	dec, err := NewSecureCodec(testTables(), other)
	require.NoError(t, err)

	msg, err := dec.Decode(wire, DecodeOptions{Direction: Downlink})
	if err == nil {
		assert.False(t, msg.Valid)
	}
}

func TestParseAccessLevel(t *testing.T) {
	level, err := ParseAccessLevel("ReadWrite")
	require.NoError(t, err)
	assert.Equal(t, ReadWrite, level)

	_, err = ParseAccessLevel("admin")
	assert.ErrorIs(t, err, ErrAccessLevel)
	assert.Equal(t, "accessLevel(0x07)", AccessLevel(0x07).String())
}
