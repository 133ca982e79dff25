package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

func TestPackUnpack(t *testing.T) {
	in := sample{Name: "timeline", Count: 3, Tags: []string{"a", "b"}}

	data, err := Pack(in)
	require.NoError(t, err)
	assert.Equal(t, Magic, data[:len(Magic)])

	var out sample
	require.NoError(t, Unpack(data, &out))
	assert.Equal(t, in, out)
}

func TestUnpack_RejectsUnpacked(t *testing.T) {
	var out sample
	err := Unpack([]byte(`{"name":"x"}`), &out)
	assert.ErrorIs(t, err, ErrNotPacked)
}

func TestUnpack_CorruptFrame(t *testing.T) {
	data := append([]byte{}, Magic...)
	data = append(data, 0xde, 0xad, 0xbe, 0xef)

	var out sample
	assert.Error(t, Unpack(data, &out))
}

func TestUnpackRaw(t *testing.T) {
	data, err := Pack(map[string]int{"n": 1})
	require.NoError(t, err)

	raw, err := UnpackRaw(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, string(raw))
}

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zeta":  "z",
		"alpha": int64(1),
		"mid":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":1,"mid":true,"zeta":"z"}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	out, err := MarshalCanonical("<a & b>")
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(out))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonical_Nested(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"list": []any{"x", int64(2)},
		"obj":  map[string]string{"b": "2", "a": "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":["x",2],"obj":{"a":"1","b":"2"}}`, string(out))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	for name, v := range map[string]any{
		"nil":    nil,
		"float":  1.5,
		"struct": struct{}{},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := MarshalCanonical(v)
			assert.Error(t, err)
		})
	}
}

func TestLessUTF16(t *testing.T) {
	// U+FF61 sorts after U+1F600 in UTF-16 (0xFF61 > 0xD83D) but before it in UTF-8.
	assert.True(t, lessUTF16("\U0001F600", "\uFF61"))
	assert.False(t, lessUTF16("\uFF61", "\U0001F600"))
	assert.True(t, lessUTF16("a", "ab"))
}
