// Package search filters the searchable catalogs by title.
package search

import (
	"fmt"
	"strings"
)

// Category names a searchable catalog.
type Category string

const (
	CategoryQuestion Category = "question"
	CategoryCourse   Category = "course"
	CategoryUser     Category = "user"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryQuestion, CategoryCourse, CategoryUser}

// Label returns the tab label for c.
func (c Category) Label() string {
	switch c {
	case CategoryQuestion:
		return "Questions"
	case CategoryCourse:
		return "Courses"
	case CategoryUser:
		return "Users"
	default:
		return string(c)
	}
}

// ParseCategory converts a user-supplied name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown search category %q", s)
}

// Item is one search hit.
type Item struct {
	ID    string
	Title string
}

// Catalog is the searchable data, per category.
type Catalog map[Category][]Item

// DefaultCatalog is the built-in catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		CategoryQuestion: {
			{ID: "q1", Title: "What is React Native?"},
			{ID: "q2", Title: "How to use hooks in React?"},
		},
		CategoryCourse: {
			{ID: "c1", Title: "React Native Course"},
			{ID: "c2", Title: "JavaScript Basics"},
		},
		CategoryUser: {
			{ID: "u1", Title: "User John Doe"},
			{ID: "u2", Title: "User Jane Smith"},
		},
	}
}

// Search returns the items of category whose title contains query, ignoring
// case. An empty query matches everything.
func (c Catalog) Search(category Category, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Item
	for _, it := range c[category] {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}
	return out
}

// Session holds the state of one search screen: the current query,
// category and results. Changing either re-runs the search.
type Session struct {
	catalog  Catalog
	query    string
	category Category
	results  []Item
}

// NewSession starts a session on the question category with no results.
func NewSession(c Catalog) *Session {
	return &Session{catalog: c, category: CategoryQuestion}
}

// Submit runs query against the current category.
func (s *Session) Submit(query string) []Item {
	s.query = query
	s.results = s.catalog.Search(s.category, query)
	return s.results
}

// SetCategory switches category and re-runs the last query.
func (s *Session) SetCategory(c Category) []Item {
	s.category = c
	s.results = s.catalog.Search(c, s.query)
	return s.results
}

// Query returns the last submitted query.
func (s *Session) Query() string { return s.query }

// Category returns the selected category.
func (s *Session) Category() Category { return s.category }

// Results returns the results of the last search.
func (s *Session) Results() []Item { return s.results }
