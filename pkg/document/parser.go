package document

import (
	"html"
	"strings"

	"github.com/celldown/celldown/pkg/document/constants"
)

// Parse segments the flat persisted form into cell snapshots. It never
// fails: unrecognized lines outside a block are dropped and malformed or
// overlapping markers close the open block early. Empty input yields an
// empty sequence.
func Parse(data []byte) []Snapshot {
	p := &parser{}
	for _, line := range splitLines(data) {
		p.feed(line)
	}
	p.flush()
	return p.cells
}

type parserState int

const (
	stateNone parserState = iota
	stateCode
	stateText
	stateOutput
)

type parser struct {
	cells []Snapshot

	state    parserState
	pending  []string
	textMode TextMode
}

func (p *parser) feed(line string) {
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == constants.CodeStartMarker:
		p.flush()
		p.state = stateCode
		return

	case strings.HasPrefix(trimmed, constants.TextOpenerPrefix):
		p.flush()
		p.state = stateText
		p.textMode = EditingMode
		if strings.Contains(trimmed, constants.RenderQualifier) {
			p.textMode = RenderedMode
		}
		return

	case strings.HasPrefix(trimmed, constants.OutputOpenerPrefix):
		p.flush()
		p.state = stateOutput
		return
	}

	switch p.state {
	case stateCode:
		if trimmed == constants.CodeEndMarker {
			p.flush()
			return
		}
		p.pending = append(p.pending, line)

	case stateText, stateOutput:
		if strings.HasSuffix(trimmed, constants.BlockCloser) {
			rest := strings.TrimSuffix(trimmed, constants.BlockCloser)
			rest = strings.TrimRight(rest, " \t")
			if rest != "" {
				p.pending = append(p.pending, rest)
			}
			p.flush()
			return
		}
		p.pending = append(p.pending, line)

	case stateNone:
		// Unrecognized line outside any block; dropped.
	}
}

// flush finalizes whichever block is open. Accumulations that are empty or
// all-whitespace produce no cell and no output.
func (p *parser) flush() {
	content := trimBlock(p.pending)
	state := p.state

	p.pending = nil
	p.state = stateNone

	if strings.TrimSpace(content) == "" {
		return
	}

	switch state {
	case stateCode:
		p.cells = append(p.cells, Snapshot{Cell: NewCodeCell(), Text: content})

	case stateText:
		p.cells = append(p.cells, Snapshot{Cell: NewTextCell(p.textMode), Text: content})

	case stateOutput:
		p.attachOutput(content)
	}
}

// attachOutput appends the block's content as a single Log output to the
// nearest preceding code cell, skipping any text cells in between. With no
// prior code cell the content is discarded.
func (p *parser) attachOutput(content string) {
	for i := len(p.cells) - 1; i >= 0; i-- {
		if p.cells[i].Cell.Kind() != CodeKind {
			continue
		}
		p.cells[i].Cell.AppendOutput(NewLogOutput(html.UnescapeString(content)))
		return
	}
}

// trimBlock joins accumulated lines, trimming blank lines at block
// granularity only. Inner blank lines and per-line whitespace survive.
func trimBlock(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(s, "\n")
}
