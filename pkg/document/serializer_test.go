package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize_MixedCells(t *testing.T) {
	code := NewCodeCell()
	text := NewTextCell(RenderedMode)

	result := Serialize([]Snapshot{
		{Cell: code, Text: "echo hello"},
		{Cell: text, Text: "# Title"},
	})

	assert.Equal(t, `// [CODE STARTS]
echo hello
// [CODE ENDS]

/* [TEXT (render)]
# Title
*/
`, string(result))
}

func TestSerialize_OutputsFollowCodeBlock(t *testing.T) {
	code := NewCodeCell()
	code.AppendOutput(NewLogOutput("plain"))
	code.AppendOutput(NewErrorOutput(`a < b & "c"`))

	result := Serialize([]Snapshot{{Cell: code, Text: "run"}})

	assert.Equal(t, `// [CODE STARTS]
run
// [CODE ENDS]

/* [OUTPUT]
plain
a &lt; b &amp; &#34;c&#34;
*/
`, string(result))
}

func TestSerialize_ImageOutput(t *testing.T) {
	code := NewCodeCell()
	code.AppendOutput(NewImageOutput([]byte{0x1}, `image/png"><script>`))

	result := string(Serialize([]Snapshot{{Cell: code, Text: "image pic.png"}}))

	assert.Contains(t, result, `<img src="data:image/pngscript;base64,AQ=="/>`)
	assert.NotContains(t, result, `"><script>`)
}

func TestSerialize_TextCellNeverEmitsOutputs(t *testing.T) {
	text := NewTextCell(EditingMode)
	text.AppendOutput(NewLogOutput("ignored"))

	result := string(Serialize([]Snapshot{{Cell: text, Text: "body"}}))

	assert.Equal(t, "/* [TEXT]\nbody\n*/\n", result)
}

func TestRoundTrip_ParseSerialize(t *testing.T) {
	code := NewCodeCell()
	code.AppendOutput(NewLogOutput("2"))

	original := []Snapshot{
		{Cell: NewTextCell(EditingMode), Text: "intro paragraph\nsecond line"},
		{Cell: code, Text: "echo $((1+1))"},
		{Cell: NewTextCell(RenderedMode), Text: "## Notes"},
		{Cell: NewCodeCell(), Text: "A=1\necho $A"},
	}

	parsed := Parse(Serialize(original))
	require.Len(t, parsed, len(original))

	for i := range original {
		assert.Equal(t, original[i].Cell.Kind(), parsed[i].Cell.Kind(), "cell %d", i)
		assert.Equal(t, original[i].Text, parsed[i].Text, "cell %d", i)
		if original[i].Cell.Kind() == TextKind {
			assert.Equal(t, original[i].Cell.Mode(), parsed[i].Cell.Mode(), "cell %d", i)
		}
		require.Len(t, parsed[i].Cell.Outputs(), len(original[i].Cell.Outputs()), "cell %d", i)
		for j, out := range original[i].Cell.Outputs() {
			assert.Equal(t, out.Text, parsed[i].Cell.Outputs()[j].Text)
		}
	}
}

func TestRoundTrip_SerializeParse(t *testing.T) {
	data := []byte(`/* [TEXT]
hello
*/

// [CODE STARTS]
echo hi
// [CODE ENDS]
`)

	again := Serialize(Parse(data))
	assert.Equal(t, string(data), string(again))
}
