package metadata

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReader_ShiftJIS(t *testing.T) {
	// "日本語" in Shift-JIS: 93 FA 96 7B 8C EA
	buf := new(bytes.Buffer)
	buf.WriteString("chair|")
	buf.Write([]byte{0x93, 0xFA, 0x96, 0x7B, 0x8C, 0xEA})
	buf.WriteString("\n")

	enc, err := LookupEncoding("shift_jis")
	require.NoError(t, err)

	fields, err := NewReader(buf, "names", enc).Next()
	require.NoError(t, err)
	require.Equal(t, []string{"chair", "日本語"}, fields)
}

func TestReader_Windows1252(t *testing.T) {
	enc, err := LookupEncoding("windows-1252")
	require.NoError(t, err)

	r := NewReader(bytes.NewReader([]byte("cafe|Caf\xe9 Table\r\n")), "names", enc)
	fields, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, "Café Table", fields[1])
}

func TestReader_SkipsBlankLines(t *testing.T) {
	r := NewReader(bytes.NewBufferString("\n  \na|A\n\nb|B"), "names", nil)

	fields, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "A"}, fields)
	require.Equal(t, 3, r.Line())

	fields, err = r.Next()
	require.NoError(t, err)
	require.Equal(t, []string{"b", "B"}, fields)
	require.Equal(t, 5, r.Line())

	_, err = r.Next()
	require.True(t, errors.Is(err, io.EOF))
}

func TestLookupEncoding_Unknown(t *testing.T) {
	_, err := LookupEncoding("klingon-8")
	require.Error(t, err)
}
