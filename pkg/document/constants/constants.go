package constants

// Marker lines of the persisted document format. Blocks never nest and
// there is no escaping mechanism for marker lines inside block content.
const (
	CodeStartMarker = "// [CODE STARTS]"
	CodeEndMarker   = "// [CODE ENDS]"

	// Text and output blocks share the close token. A text opener may carry
	// the render qualifier: "/* [TEXT (render)]".
	TextOpenerPrefix = "/* [TEXT"
	TextOpener       = "/* [TEXT]"
	TextOpenerRender = "/* [TEXT (render)]"
	RenderQualifier  = "(render)"

	OutputOpenerPrefix = "/* [OUTPUT"
	OutputOpener       = "/* [OUTPUT]"

	BlockCloser = "*/"
)
