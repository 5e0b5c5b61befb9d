package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fieldnotes/internal/frontmatter"
)

// postFilePattern matches Jekyll-style post filenames: 2023-05-14-some-slug.md
var postFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.(md|markdown)$`)

const dateLayout = "2006-01-02"

// ErrNotMarkdown is returned by Load for files the scanner would not pick up.
var ErrNotMarkdown = errors.New("not a markdown content file")

// Scan 遍历内容目录，把每个 markdown 文件解析成 Document。
// _posts/ 下的日期前缀文件按 post 处理，其余 markdown 文件按 page 处理；
// 其它下划线或点开头的目录被跳过。单个文件的解析失败不会中断扫描，
// 问题记录在对应 Document 的 Problems 里。
func Scan(root string) ([]Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content dir %s is not a directory", root)
	}

	var docs []Document
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			name := d.Name()
			if name == "_posts" {
				return nil
			}
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}

		if !isMarkdown(d.Name()) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		doc, loadErr := Load(root, rel)
		if loadErr != nil {
			return loadErr
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Load reads and validates a single content file addressed relative to the
// content root. IO failures surface as errors; validation failures surface
// on the returned document.
func Load(root, rel string) (Document, error) {
	rel = filepath.ToSlash(rel)
	if !isMarkdown(path.Base(rel)) {
		return Document{}, ErrNotMarkdown
	}

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return Document{}, err
	}

	doc := Document{Path: rel, Checksum: checksum(raw)}
	if strings.HasPrefix(rel, "_posts/") {
		doc.Kind = KindPost
	} else {
		doc.Kind = KindPage
	}

	meta, body, had, parseErr := frontmatter.Parse(raw)
	doc.Style = frontmatter.DetectStyle(raw)
	if parseErr != nil {
		doc.addProblem("front matter: %v", parseErr)
		return doc, nil
	}
	if !had {
		doc.addProblem("missing front matter block")
		return doc, nil
	}
	doc.Meta = meta
	doc.Body = body

	switch doc.Kind {
	case KindPost:
		validatePost(&doc)
	default:
		validatePage(&doc)
	}
	return doc, nil
}

func validatePage(doc *Document) {
	requireField(doc, "layout", doc.Meta.Layout)
	requireField(doc, "title", doc.Meta.Title)
	requireField(doc, "permalink", doc.Meta.Permalink)

	if p := strings.TrimSpace(doc.Meta.Permalink); p != "" && !WellFormedPermalink(doc.Meta.Permalink) {
		doc.addProblem("permalink %q is not a well-formed site path", doc.Meta.Permalink)
	}
	if len(strings.TrimSpace(string(doc.Body))) == 0 {
		doc.addProblem("body is empty")
	}
	if doc.Valid() {
		doc.Permalink = NormalizePermalink(doc.Meta.Permalink)
	}
}

func validatePost(doc *Document) {
	base := path.Base(doc.Path)
	m := postFilePattern.FindStringSubmatch(base)
	if m == nil {
		doc.addProblem("post filename %q lacks a YYYY-MM-DD date prefix", base)
		return
	}

	date, err := time.Parse(dateLayout, m[1])
	if err != nil {
		doc.addProblem("post date %q is not a calendar date", m[1])
		return
	}
	doc.Slug = m[2]
	doc.Date = date

	if d := strings.TrimSpace(doc.Meta.Date); d != "" {
		override, err := time.Parse(dateLayout, d)
		if err != nil {
			doc.addProblem("front matter date %q is not a calendar date", d)
			return
		}
		doc.Date = override
	}

	requireField(doc, "layout", doc.Meta.Layout)
	requireField(doc, "title", doc.Meta.Title)
	if len(strings.TrimSpace(string(doc.Body))) == 0 {
		doc.addProblem("body is empty")
	}

	permalink := doc.Meta.Permalink
	if strings.TrimSpace(permalink) == "" {
		permalink = "/posts/" + doc.Slug + "/"
	} else if !WellFormedPermalink(permalink) {
		doc.addProblem("permalink %q is not a well-formed site path", permalink)
	}
	if doc.Valid() {
		doc.Permalink = NormalizePermalink(permalink)
	}
}

func requireField(doc *Document, name, value string) {
	if strings.TrimSpace(value) == "" {
		doc.addProblem("front matter field %q is missing", name)
	}
}

func isMarkdown(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
