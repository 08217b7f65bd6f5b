package renderer

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders text-cell content to markup and sanitizes it before it
// ever reaches a display surface.
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewMarkdown() *Markdown {
	return &Markdown{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: bluemonday.UGCPolicy(),
	}
}

// Render converts markdown text to sanitized markup.
func (r *Markdown) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return r.Sanitize(buf.String()), nil
}

// Sanitize strips unsafe markup.
func (r *Markdown) Sanitize(markup string) string {
	return r.policy.Sanitize(markup)
}
