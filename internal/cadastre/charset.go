package cadastre

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var boms = []struct {
	mark []byte
	dec  encoding.Encoding
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{[]byte{0xFE, 0xFF}, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// legacy maps chardet names to the single-byte code pages registry offices
// still export in.
var legacy = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// utf8Reader decodes an extract to UTF-8. A BOM wins, then valid UTF-8, then
// chardet's best guess; anything else is read as Windows-1252.
func utf8Reader(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	if err == nil {
		head = completeRunes(head)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.dec == nil {
			_, _ = br.Discard(len(b.mark))
			return br, "UTF-8", nil
		}

		return transform.NewReader(br, b.dec.NewDecoder()), "UTF-16", nil
	}

	if utf8.Valid(head) {
		return br, "UTF-8", nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if res.Charset == "UTF-8" {
			return br, res.Charset, nil
		}

		if enc, ok := legacy[res.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), res.Charset, nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), "windows-1252", nil
}

// completeRunes drops a multibyte rune cut off by the end of the peek.
func completeRunes(head []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(head); i++ {
		start := len(head) - i
		if !utf8.RuneStart(head[start]) {
			continue
		}

		if !utf8.FullRune(head[start:]) {
			return head[:start]
		}

		break
	}

	return head
}
