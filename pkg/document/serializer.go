package document

import (
	"bytes"
	"encoding/base64"
	"html"
	"strings"

	"github.com/celldown/celldown/pkg/document/constants"
)

// Serialize writes cell snapshots back into the flat persisted form, the
// exact inverse of Parse. Blocks are separated by exactly one blank line.
func Serialize(cells []Snapshot) []byte {
	var buf bytes.Buffer

	for _, snap := range cells {
		switch snap.Cell.Kind() {
		case CodeKind:
			writeBlockSeparator(&buf)
			buf.WriteString(constants.CodeStartMarker)
			buf.WriteByte('\n')
			buf.WriteString(snap.Text)
			buf.WriteByte('\n')
			buf.WriteString(constants.CodeEndMarker)
			buf.WriteByte('\n')

			serializeOutputs(&buf, snap.Cell.Outputs())

		case TextKind:
			writeBlockSeparator(&buf)
			opener := constants.TextOpener
			if snap.Cell.Mode() == RenderedMode {
				opener = constants.TextOpenerRender
			}
			buf.WriteString(opener)
			buf.WriteByte('\n')
			buf.WriteString(snap.Text)
			buf.WriteByte('\n')
			buf.WriteString(constants.BlockCloser)
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

func serializeOutputs(buf *bytes.Buffer, outputs []Output) {
	if len(outputs) == 0 {
		return
	}

	writeBlockSeparator(buf)
	buf.WriteString(constants.OutputOpener)
	buf.WriteByte('\n')
	for _, output := range outputs {
		switch output.Kind {
		case ImageOutput:
			buf.WriteString("<img src=\"")
			buf.WriteString(imageDataURI(output))
			buf.WriteString("\"/>")
		default:
			buf.WriteString(html.EscapeString(output.Text))
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(constants.BlockCloser)
	buf.WriteByte('\n')
}

// imageDataURI renders an image output as a data URI with characters that
// would break the surrounding tag stripped.
func imageDataURI(output Output) string {
	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(output.Mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(output.Data))
	return stripTagBreakers(b.String())
}

func stripTagBreakers(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'':
			return -1
		}
		return r
	}, s)
}

// writeBlockSeparator puts exactly one blank line between blocks.
func writeBlockSeparator(buf *bytes.Buffer) {
	if buf.Len() == 0 {
		return
	}
	buf.WriteByte('\n')
}
