// Package content loads the site's static records: blog posts, projects,
// the career timeline and the tool directory.
//
// Records live in a content tree, either the one embedded in the binary or
// a directory on disk:
//
//	projects.yaml
//	timeline.yaml
//	tools.yaml
//	blog/<id>.md      markdown with YAML front matter
//	assets/...        static files served under /assets/
package content

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"
)

// ErrNotFound is returned for unknown record ids.
var ErrNotFound = errors.New("content not found")

// AllCategories is the category filter value that matches every record.
const AllCategories = "All"

// Post is a blog post.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Date        time.Time `json:"date"`
	CoverImage  string    `json:"coverImage,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Content     string    `json:"content"`
	ReadTime    int       `json:"readTime"` // minutes
}

// ProjectAction is a call-to-action button on a project card.
type ProjectAction struct {
	Label   string `yaml:"label" json:"label"`
	Href    string `yaml:"href" json:"href,omitempty"`
	Variant string `yaml:"variant" json:"variant,omitempty"`
}

// ProjectVisual is the hero media of a project card.
type ProjectVisual struct {
	Type    string `yaml:"type" json:"type"` // image, mobile-mockup or gif
	Src     string `yaml:"src" json:"src"`
	SrcDark string `yaml:"srcDark" json:"srcDark,omitempty"`
	Alt     string `yaml:"alt" json:"alt"`
}

// MilestoneContent is one text or image block of a milestone.
type MilestoneContent struct {
	Type     string `yaml:"type" json:"type"`
	Content  string `yaml:"content" json:"content,omitempty"`
	Image    string `yaml:"image" json:"image,omitempty"`
	ImageAlt string `yaml:"imageAlt" json:"imageAlt,omitempty"`
}

// ProjectMilestone is a dated entry on a project's own timeline.
type ProjectMilestone struct {
	Date    string             `yaml:"date" json:"date"` // YYYY-MM-DD
	Title   string             `yaml:"title" json:"title"`
	Content []MilestoneContent `yaml:"content" json:"content"`
}

// Project is a portfolio project.
type Project struct {
	ID             string             `yaml:"id" json:"id"`
	Title          string             `yaml:"title" json:"title"`
	Description    string             `yaml:"description" json:"description"`
	TechStack      string             `yaml:"techStack" json:"techStack"`
	Logo           string             `yaml:"logo" json:"logo,omitempty"`
	LogoAlt        string             `yaml:"logoAlt" json:"logoAlt,omitempty"`
	Visual         ProjectVisual      `yaml:"visual" json:"visual"`
	Actions        []ProjectAction    `yaml:"actions" json:"actions"`
	AnimationDelay float64            `yaml:"animationDelay" json:"animationDelay"`
	Layout         string             `yaml:"layout" json:"layout,omitempty"` // default or reversed
	Timeline       []ProjectMilestone `yaml:"timeline" json:"timeline,omitempty"`
}

// TimelineSubsection is one role held at a timeline organization.
type TimelineSubsection struct {
	Title      string   `yaml:"title" json:"title"`
	Year       string   `yaml:"year" json:"year"`
	Highlights []string `yaml:"highlights" json:"highlights"`
}

// TimelineItem is one organization on the career timeline.
type TimelineItem struct {
	Title       string               `yaml:"title" json:"title"`
	Year        string               `yaml:"year" json:"year,omitempty"`
	Logo        string               `yaml:"logo" json:"logo"`
	LogoAlt     string               `yaml:"logoAlt" json:"logoAlt"`
	Highlights  []string             `yaml:"highlights" json:"highlights,omitempty"`
	Subsections []TimelineSubsection `yaml:"subsections" json:"subsections,omitempty"`
}

// Tool is an entry in the tool directory.
type Tool struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Path        string `yaml:"path" json:"path"`
}

// Library is an immutable snapshot of every record in a content tree.
type Library struct {
	posts    []Post // newest first
	projects []Project
	timeline []TimelineItem
	tools    []Tool
}

// Posts returns the posts in category, newest first. An empty category or
// AllCategories returns every post.
func (l *Library) Posts(category string) []Post {
	return filter(l.posts, category, func(p Post) string { return p.Category })
}

// Post returns the post with the given id.
func (l *Library) Post(id string) (Post, error) {
	return find(l.posts, id, func(p Post) string { return p.ID })
}

// PostCategories returns AllCategories followed by every distinct post
// category in alphabetical order.
func (l *Library) PostCategories() []string {
	return categories(l.posts, func(p Post) string { return p.Category })
}

// Projects returns every project in file order.
func (l *Library) Projects() []Project {
	return slices.Clone(l.projects)
}

// Project returns the project with the given id.
func (l *Library) Project(id string) (Project, error) {
	return find(l.projects, id, func(p Project) string { return p.ID })
}

// Timeline returns the career timeline in file order.
func (l *Library) Timeline() []TimelineItem {
	return slices.Clone(l.timeline)
}

// Tools returns the tools in category. An empty category or AllCategories
// returns every tool.
func (l *Library) Tools(category string) []Tool {
	return filter(l.tools, category, func(t Tool) string { return t.Category })
}

// Tool returns the tool with the given id.
func (l *Library) Tool(id string) (Tool, error) {
	return find(l.tools, id, func(t Tool) string { return t.ID })
}

// ToolCategories returns AllCategories followed by every distinct tool
// category in alphabetical order.
func (l *Library) ToolCategories() []string {
	return categories(l.tools, func(t Tool) string { return t.Category })
}

func filter[T any](items []T, category string, cat func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if category == "" || category == AllCategories || cat(it) == category {
			out = append(out, it)
		}
	}
	return out
}

func find[T any](items []T, id string, key func(T) string) (T, error) {
	for _, it := range items {
		if key(it) == id {
			return it, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func categories[T any](items []T, cat func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		c := cat(it)
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return append([]string{AllCategories}, out...)
}
