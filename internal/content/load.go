package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/portfolio/internal/markdown"
)

//go:embed data
var embedded embed.FS

// Embedded returns the content tree compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// postMeta is the front matter of a blog post.
type postMeta struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Date        string   `yaml:"date"`
	CoverImage  string   `yaml:"coverImage"`
	Images      []string `yaml:"images"`
}

// Load reads every record from a content tree.
//
// A missing YAML file yields no records of that kind; a file that exists
// but cannot be parsed is an error. Duplicate ids within a kind are
// rejected.
func Load(fsys fs.FS) (*Library, error) {
	lib := &Library{}

	if err := readYAML(fsys, "projects.yaml", &lib.projects); err != nil {
		return nil, err
	}
	if err := readYAML(fsys, "timeline.yaml", &lib.timeline); err != nil {
		return nil, err
	}
	if err := readYAML(fsys, "tools.yaml", &lib.tools); err != nil {
		return nil, err
	}

	posts, err := loadPosts(fsys)
	if err != nil {
		return nil, err
	}
	lib.posts = posts

	if err := uniqueIDs("project", lib.projects, func(p Project) string { return p.ID }); err != nil {
		return nil, err
	}
	if err := uniqueIDs("tool", lib.tools, func(t Tool) string { return t.ID }); err != nil {
		return nil, err
	}
	if err := uniqueIDs("post", lib.posts, func(p Post) string { return p.ID }); err != nil {
		return nil, err
	}
	return lib, nil
}

func readYAML(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func loadPosts(fsys fs.FS) ([]Post, error) {
	names, err := fs.Glob(fsys, "blog/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]Post, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		p, err := parsePost(strings.TrimSuffix(path.Base(name), ".md"), data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		posts = append(posts, p)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].Date.Equal(posts[j].Date) {
			return posts[i].Date.After(posts[j].Date)
		}
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

// parsePost decodes one markdown file. The id defaults to the file name.
func parsePost(id string, data []byte) (Post, error) {
	var meta postMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Post{}, fmt.Errorf("invalid front matter: %w", err)
	}
	if meta.ID != "" {
		id = meta.ID
	}
	if meta.Title == "" {
		return Post{}, errors.New("missing title")
	}
	date, err := parseDate(meta.Date)
	if err != nil {
		return Post{}, err
	}

	content := strings.TrimSpace(string(body))
	return Post{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Category:    meta.Category,
		Date:        date,
		CoverImage:  meta.CoverImage,
		Images:      meta.Images,
		Content:     content,
		ReadTime:    ReadTime(content),
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// ReadTime is the estimated reading time of a post in minutes, at least 1.
func ReadTime(content string) int {
	return max(1, markdown.ReadingMinutes(content))
}

func uniqueIDs[T any](kind string, items []T, key func(T) string) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		id := key(it)
		if id == "" {
			return fmt.Errorf("%s with empty id", kind)
		}
		if seen[id] {
			return fmt.Errorf("duplicate %s id %q", kind, id)
		}
		seen[id] = true
	}
	return nil
}
