package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
)

var (
	// ErrMissingClosingDelimiter 表示文档以 --- 开头但没有找到闭合分隔线。
	ErrMissingClosingDelimiter = errors.New("front matter opened but never closed")
)

// Meta captures the YAML front-matter fields understood by the site engine.
// Layout, Title and Permalink are required for pages; the remaining fields
// only appear on posts.
type Meta struct {
	Layout    string   `yaml:"layout"`
	Title     string   `yaml:"title"`
	Permalink string   `yaml:"permalink,omitempty"`
	Date      string   `yaml:"date,omitempty"`
	Summary   string   `yaml:"summary,omitempty"`
	Tags      []string `yaml:"tags,omitempty"`
	Draft     bool     `yaml:"draft,omitempty"`
}

// Style 记录原始文档的换行风格，重写文件时需要保持一致。
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Parse extracts the front-matter block and markdown body from a document.
// had reports whether the document opened with a front-matter fence at all;
// documents without one come back with a zero Meta and the full input as body.
func Parse(source []byte) (meta Meta, body []byte, had bool, err error) {
	style := DetectStyle(source)
	if !hasOpeningFence(source, style) {
		return Meta{}, source, false, nil
	}
	if !hasClosingFence(source, style) {
		return Meta{}, nil, true, ErrMissingClosingDelimiter
	}

	body, err = frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return Meta{}, nil, true, fmt.Errorf("parse front matter: %w", err)
	}

	return meta, body, true, nil
}

// DetectStyle infers the newline convention of a document. Mixed-newline
// files resolve to whichever convention appears first.
func DetectStyle(source []byte) Style {
	style := Style{Newline: "\n"}
	if idx := bytes.IndexByte(source, '\n'); idx > 0 && source[idx-1] == '\r' {
		style.Newline = "\r\n"
	}
	style.HasTrailingNewline = len(source) > 0 && source[len(source)-1] == '\n'
	return style
}

func hasOpeningFence(source []byte, style Style) bool {
	return bytes.HasPrefix(source, []byte("---"+style.Newline))
}

// hasClosingFence 不依赖 DetectStyle 的结论：混合换行的文件里，
// 闭合分隔线可能用另一种换行风格。
func hasClosingFence(source []byte, style Style) bool {
	rest := source[len("---"+style.Newline):]
	if bytes.HasPrefix(rest, []byte("---\n")) || bytes.HasPrefix(rest, []byte("---\r\n")) {
		return true
	}
	return bytes.Contains(rest, []byte("\n---\n")) ||
		bytes.Contains(rest, []byte("\n---\r\n")) ||
		bytes.HasSuffix(rest, []byte("\n---"))
}
