package content

import (
	"io/fs"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Damian-Sonwa/Academician-hub-sub001/core"
)

type courseEntry struct {
	Course
	weeks map[Level][]Week
}

// Catalog is an immutable snapshot of the loaded content.
type Catalog struct {
	courses map[string]*courseEntry
	ids     []string // sorted
}

func newCatalog() *Catalog {
	return &Catalog{courses: make(map[string]*courseEntry)}
}

func (c *Catalog) add(ce *courseEntry) {
	c.courses[ce.ID] = ce
	c.ids = append(c.ids, ce.ID)
	sort.Strings(c.ids)
}

func (c *Catalog) Courses() []Course {
	courses := make([]Course, 0, len(c.ids))
	for _, id := range c.ids {
		courses = append(courses, c.courses[id].Course)
	}
	return courses
}

func (c *Catalog) Course(id string) (Course, error) {
	ce, ok := c.courses[core.CleanString(id, true /* lower */)]
	if !ok {
		return Course{}, ErrCourseNotFound
	}
	return ce.Course, nil
}

func (c *Catalog) Weeks(courseID string, level Level) ([]Week, error) {
	ce, ok := c.courses[core.CleanString(courseID, true /* lower */)]
	if !ok {
		return nil, ErrCourseNotFound
	}
	weeks, ok := ce.weeks[level]
	if !ok {
		return nil, ErrLevelNotFound
	}
	return weeks, nil
}

func (c *Catalog) Week(courseID string, level Level, n int) (Week, error) {
	weeks, err := c.Weeks(courseID, level)
	if err != nil {
		return Week{}, err
	}
	if n < 1 || n > len(weeks) {
		return Week{}, ErrWeekNotFound
	}
	return weeks[n-1], nil
}

// Store serves the current Catalog and swaps it on Reload.
// A failed reload keeps the previous catalog.
type Store struct {
	fsys   fs.FS
	loader *Loader

	mu      sync.RWMutex
	catalog *Catalog
}

func NewStore(fsys fs.FS, validate *validator.Validate) (*Store, error) {
	s := &Store{
		fsys:   fsys,
		loader: NewLoader(validate),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Reload() error {
	cat, err := s.loader.Load(s.fsys)
	if err != nil {
		return errors.Wrap(err, "loading content")
	}
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return nil
}

func (s *Store) Catalog() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Store) Courses() []Course                { return s.Catalog().Courses() }
func (s *Store) Course(id string) (Course, error) { return s.Catalog().Course(id) }

func (s *Store) Weeks(courseID string, level Level) ([]Week, error) {
	return s.Catalog().Weeks(courseID, level)
}

func (s *Store) Week(courseID string, level Level, n int) (Week, error) {
	return s.Catalog().Week(courseID, level, n)
}
