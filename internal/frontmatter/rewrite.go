package frontmatter

import (
	"bytes"

	"gopkg.in/yaml.v3"
)

// Rewrite reassembles a page document from its metadata and a replacement
// body, keeping the newline convention of the original file. Field order in
// the emitted block follows the Meta struct, so repeated rewrites are stable.
func Rewrite(meta Meta, body []byte, style Style) ([]byte, error) {
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&meta); err != nil {
		enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	block := buf.Bytes()
	if nl != "\n" {
		block = bytes.ReplaceAll(block, []byte("\n"), []byte(nl))
	}

	fence := []byte("---" + nl)
	out := make([]byte, 0, 2*len(fence)+len(block)+len(body)+len(nl))
	out = append(out, fence...)
	out = append(out, block...)
	out = append(out, fence...)
	out = append(out, body...)

	if style.HasTrailingNewline && !bytes.HasSuffix(out, []byte("\n")) {
		out = append(out, []byte(nl)...)
	}
	return out, nil
}
