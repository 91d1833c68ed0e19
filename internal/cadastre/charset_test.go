package cadastre

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeAll(t *testing.T, in []byte) (string, string) {
	t.Helper()

	r, charset, err := utf8Reader(bytes.NewReader(in))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got), charset
}

func TestUTF8Reader_Passthrough(t *testing.T) {
	in := "Artigo matricial;Localização\nU-1234;Rua da Conceição\n"

	got, charset := decodeAll(t, []byte(in))
	assert.Equal(t, in, got)
	assert.Equal(t, "UTF-8", charset)
}

func TestUTF8Reader_StripsBOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Localização\n")...)

	got, _ := decodeAll(t, in)
	assert.Equal(t, "Localização\n", got)
}

func TestUTF8Reader_Windows1252(t *testing.T) {
	// "Localização\n" with ç = 0xE7 and ã = 0xE3
	in := []byte{'L', 'o', 'c', 'a', 'l', 'i', 'z', 'a', 0xE7, 0xE3, 'o', '\n'}

	got, _ := decodeAll(t, in)
	assert.Equal(t, "Localização\n", got)
}

func TestUTF8Reader_UTF16LE(t *testing.T) {
	in := []byte{0xFF, 0xFE, 'i', 0, 'd', 0, '\n', 0}

	got, charset := decodeAll(t, in)
	assert.Equal(t, "id\n", got)
	assert.Equal(t, "UTF-16", charset)
}

func TestUTF8Reader_RuneAcrossPeekBoundary(t *testing.T) {
	// "ç" is two bytes; place it so it starts on the last peeked byte
	in := strings.Repeat("a", sniffSize-1) + "ção\n"

	got, charset := decodeAll(t, []byte(in))
	assert.Equal(t, "UTF-8", charset)
	assert.Equal(t, in, got)
}

func TestCompleteRunes(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{name: "ascii", in: []byte("abc"), want: []byte("abc")},
		{name: "whole rune", in: []byte("aç"), want: []byte("aç")},
		{name: "cut two byte rune", in: []byte{'a', 0xC3}, want: []byte{'a'}},
		{name: "cut four byte rune", in: []byte{'a', 0xF0, 0x9F, 0x8F}, want: []byte{'a'}},
		{name: "stray continuation", in: []byte{'a', 0x80}, want: []byte{'a', 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, completeRunes(tt.in))
		})
	}
}
