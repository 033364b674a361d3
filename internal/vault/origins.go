package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/notedeck/taskscan/internal/model"
)

const markdownExt = ".md"

// SubtreeOrigin contributes every markdown document under one directory.
type SubtreeOrigin struct {
	root string
	dir  string
}

func (o *SubtreeOrigin) Name() string {
	return "subtree:" + o.dir
}

func (o *SubtreeOrigin) List() ([]model.DocumentID, error) {
	return walkMarkdown(o.root, o.dir, nil)
}

// DailyOrigin contributes documents whose filename stem parses as a date in
// the configured layout.
type DailyOrigin struct {
	root   string
	dir    string
	layout string
}

func (o *DailyOrigin) Name() string {
	return "daily:" + o.dir
}

func (o *DailyOrigin) List() ([]model.DocumentID, error) {
	layout := o.layout
	if layout == "" {
		layout = "2006-01-02"
	}
	return walkMarkdown(o.root, o.dir, func(path string) bool {
		stem := strings.TrimSuffix(filepath.Base(path), markdownExt)
		_, err := time.Parse(layout, stem)
		return err == nil
	})
}

// TaggedOrigin contributes documents whose YAML frontmatter carries at least
// one of the configured tags.
type TaggedOrigin struct {
	root string
	dir  string
	tags []string
}

func (o *TaggedOrigin) Name() string {
	return "tagged:" + strings.Join(o.tags, ",")
}

func (o *TaggedOrigin) List() ([]model.DocumentID, error) {
	wanted := make(map[string]bool, len(o.tags))
	for _, tag := range o.tags {
		wanted[strings.TrimPrefix(tag, "#")] = true
	}
	return walkMarkdown(o.root, o.dir, func(path string) bool {
		tags, err := readFrontmatterTags(path)
		if err != nil {
			return false
		}
		for _, tag := range tags {
			if wanted[strings.TrimPrefix(tag, "#")] {
				return true
			}
		}
		return false
	})
}

// walkMarkdown lists markdown files under root/dir as vault-relative
// identifiers, optionally filtered by keep (which receives absolute paths).
func walkMarkdown(root, dir string, keep func(path string) bool) ([]model.DocumentID, error) {
	base := filepath.Join(root, filepath.FromSlash(dir))
	var ids []model.DocumentID
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (including .taskscan) are never scanned.
			if path != base && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), markdownExt) {
			return nil
		}
		if keep != nil && !keep(path) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		ids = append(ids, model.DocumentID(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return ids, nil
}

// frontmatter is the subset of note frontmatter the tagged origin needs.
// Tags may be a YAML list or a single scalar.
type frontmatter struct {
	Tags tagList `yaml:"tags"`
}

type tagList []string

func (t *tagList) UnmarshalYAML(node *yamlv3.Node) error {
	switch node.Kind {
	case yamlv3.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*t = tagList{s}
		return nil
	default:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*t = tagList(list)
		return nil
	}
}

// readFrontmatterTags extracts the tags from a note's leading YAML
// frontmatter block (delimited by "---" lines). Notes without a block have
// no tags.
func readFrontmatterTags(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	if !strings.HasPrefix(text, "---\n") {
		return nil, nil
	}
	rest := text[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return nil, nil
	}

	var fm frontmatter
	if err := yamlv3.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return nil, fmt.Errorf("parse frontmatter of %s: %w", path, err)
	}
	return fm.Tags, nil
}
