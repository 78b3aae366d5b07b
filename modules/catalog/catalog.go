// Package catalog loads and caches the product and course definitions that
// drive the ordering keyboards. Catalog data is best-effort presentation
// data: a missing, empty, or malformed document yields an empty collection,
// never an error.
package catalog

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	"bakerybot/core/logger"
	"log/slog"
)

// Kind tags a catalog entry as a physical product or a course.
type Kind string

const (
	KindProduct Kind = "product"
	KindCourse  Kind = "course"
)

// Label returns a human-readable name of the kind.
func (k Kind) Label() string {
	if k == KindCourse {
		return "Course"
	}
	return "Product"
}

// Entry is a single orderable item. Immutable once loaded; Name is the
// natural key within a kind.
type Entry struct {
	Name        string
	Kind        Kind
	Price       int
	Description string
	// Token is the callback payload that selects this entry from a keyboard.
	Token string
	// ImageRef points at an optional media asset, relative to the media dir.
	ImageRef string
}

// CategoryGroup is a presentation grouping of product entries.
type CategoryGroup struct {
	Name     string
	Category string
	Items    []Entry
}

// Store caches catalog data read from two JSON documents. The cache is
// populated lazily on first use and replaced only by an explicit reload.
type Store struct {
	productsPath string
	coursesPath  string

	mu             sync.RWMutex
	products       []CategoryGroup
	productsLoaded bool
	courses        []Entry
	coursesLoaded  bool

	log *slog.Logger
}

// NewStore creates a catalog store over the given document paths.
func NewStore(productsPath, coursesPath string) *Store {
	return &Store{
		productsPath: productsPath,
		coursesPath:  coursesPath,
		log:          logger.Component("catalog"),
	}
}

type productDoc struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Items    []struct {
		Item         string `json:"item"`
		Price        int    `json:"price"`
		CallbackData string `json:"callback_data"`
		ImageURL     string `json:"image_url"`
	} `json:"items"`
}

type courseDoc struct {
	Item        string `json:"item"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	ImageURL    string `json:"image_url"`
}

// LoadProducts returns the cached product catalog, reading it from storage
// on first use.
func (s *Store) LoadProducts() []CategoryGroup {
	s.mu.RLock()
	if s.productsLoaded {
		defer s.mu.RUnlock()
		return s.products
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.productsLoaded {
		s.products = s.readProducts()
		s.productsLoaded = true
	}
	return s.products
}

// LoadCourses returns the cached course list, reading it from storage on
// first use.
func (s *Store) LoadCourses() []Entry {
	s.mu.RLock()
	if s.coursesLoaded {
		defer s.mu.RUnlock()
		return s.courses
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.coursesLoaded {
		s.courses = s.readCourses()
		s.coursesLoaded = true
	}
	return s.courses
}

// ReloadProducts replaces the product cache with a fresh read, regardless of
// the current cache state.
func (s *Store) ReloadProducts() {
	fresh := s.readProducts()
	s.mu.Lock()
	s.products = fresh
	s.productsLoaded = true
	s.mu.Unlock()
}

// ReloadCourses replaces the course cache with a fresh read.
func (s *Store) ReloadCourses() {
	fresh := s.readCourses()
	s.mu.Lock()
	s.courses = fresh
	s.coursesLoaded = true
	s.mu.Unlock()
}

// FindProduct looks a product up by exact name within the cached catalog.
func (s *Store) FindProduct(name string) (Entry, bool) {
	for _, group := range s.LoadProducts() {
		for _, item := range group.Items {
			if item.Name == name {
				return item, true
			}
		}
	}
	return Entry{}, false
}

// FindCourse looks a course up by exact name within the cached list.
func (s *Store) FindCourse(name string) (Entry, bool) {
	for _, course := range s.LoadCourses() {
		if course.Name == name {
			return course, true
		}
	}
	return Entry{}, false
}

func (s *Store) readProducts() []CategoryGroup {
	var docs []productDoc
	if !s.readDoc(s.productsPath, &docs) {
		return []CategoryGroup{}
	}
	groups := make([]CategoryGroup, 0, len(docs))
	for _, doc := range docs {
		group := CategoryGroup{Name: doc.Name, Category: doc.Category}
		for _, item := range doc.Items {
			group.Items = append(group.Items, Entry{
				Name:     item.Item,
				Kind:     KindProduct,
				Price:    item.Price,
				Token:    item.CallbackData,
				ImageRef: item.ImageURL,
			})
		}
		groups = append(groups, group)
	}
	return groups
}

func (s *Store) readCourses() []Entry {
	var docs []courseDoc
	if !s.readDoc(s.coursesPath, &docs) {
		return []Entry{}
	}
	courses := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		courses = append(courses, Entry{
			Name:        doc.Item,
			Kind:        KindCourse,
			Price:       doc.Price,
			Description: doc.Description,
			Token:       "course_" + doc.Item,
			ImageRef:    doc.ImageURL,
		})
	}
	return courses
}

// readDoc reads and parses one catalog document. Every failure is soft:
// the caller gets false and serves an empty collection.
func (s *Store) readDoc(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.LogAttrs(context.Background(), slog.LevelWarn, "",
				slog.String("event", "catalog.read_failed"),
				slog.String("path", path),
				slog.String("err", err.Error()),
			)
		}
		return false
	}
	if strings.TrimSpace(string(data)) == "" {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.log.LogAttrs(context.Background(), slog.LevelWarn, "",
			slog.String("event", "catalog.parse_failed"),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return false
	}
	return true
}
