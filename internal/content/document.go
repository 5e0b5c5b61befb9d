package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fieldnotes/internal/frontmatter"
)

// Kind distinguishes the two document flavors in a content tree.
const (
	KindPage = "page"
	KindPost = "post"
)

// Document is one markdown source file after front-matter extraction.
// A document with a non-empty Problems list failed validation and must not
// be published; the problems are surfaced as sync warnings.
type Document struct {
	Kind      string
	Path      string // relative to the content root, forward slashes
	Meta      frontmatter.Meta
	Body      []byte
	Style     frontmatter.Style
	Checksum  string
	Slug      string    // posts only, derived from the filename
	Date      time.Time // posts only
	Permalink string    // normalized form used for routing and uniqueness
	Problems  []string
}

// Valid reports whether the document may be published.
func (d *Document) Valid() bool {
	return len(d.Problems) == 0
}

func (d *Document) addProblem(format string, args ...any) {
	d.Problems = append(d.Problems, fmt.Sprintf(format, args...))
}

// NormalizePermalink brings an authored permalink into canonical form:
// cleaned, leading slash, no trailing slash except for the root path.
// Jekyll-style "/about/" and "/about" collapse to the same key.
func NormalizePermalink(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	return p
}

// WellFormedPermalink checks the authored permalink against the rules a
// page must satisfy: absolute site path, no whitespace, no scheme or host,
// no relative segments.
func WellFormedPermalink(raw string) bool {
	p := strings.TrimSpace(raw)
	if p == "" || p != raw {
		return false
	}
	if !strings.HasPrefix(p, "/") {
		return false
	}
	if strings.ContainsAny(p, " \t\n") {
		return false
	}
	if strings.Contains(p, "://") || strings.HasPrefix(p, "//") {
		return false
	}
	for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

func checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
