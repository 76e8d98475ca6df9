package tiled

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDtype(t *testing.T) {
	cases := []struct {
		in   string
		want Dtype
	}{
		{"|u1", Uint8},
		{">u2", Uint16},
		{"<f8", Dtype{ByteOrder: BOLittleEndian, BasicType: BTFloatingPoint, ByteSize: 8}},
		{"&lt;i4", Dtype{ByteOrder: BOLittleEndian, BasicType: BTInteger, ByteSize: 4}},
		{"|S16", Dtype{ByteOrder: BONotRelevant, BasicType: BTString, ByteSize: 16}},
	}
	for _, c := range cases {
		got, err := ParseDtype(c.in)
		require.NoError(t, err, c.in)
		require.Equal(t, c.want, got, c.in)
	}

	for _, bad := range []string{"", "u1", "=u1", "<x4", "<i", "<i0", "<iz"} {
		_, err := ParseDtype(bad)
		require.Error(t, err, bad)
	}
}

func TestDtypeString(t *testing.T) {
	require.Equal(t, "|u1", Uint8.String())
	require.Equal(t, ">u2", Uint16.String())
	require.Equal(t, "uint", Uint16.BasicType.Human())
}

func TestDtypeOrder(t *testing.T) {
	require.Equal(t, binary.ByteOrder(binary.BigEndian), Uint16.Order())
	le, err := ParseDtype("<u2")
	require.NoError(t, err)
	require.Equal(t, binary.ByteOrder(binary.LittleEndian), le.Order())
}

func TestDtypeJSON(t *testing.T) {
	data, err := json.Marshal(Uint16)
	require.NoError(t, err)
	require.Equal(t, `">u2"`, string(data))

	var dt Dtype
	require.NoError(t, json.Unmarshal([]byte(`"|u1"`), &dt))
	require.Equal(t, Uint8, dt)
	require.Error(t, json.Unmarshal([]byte(`"nope"`), &dt))
	require.Error(t, json.Unmarshal([]byte(`12`), &dt))
}
