// Package history remembers the last chapter downloaded for each title so
// automatic runs only fetch what is new.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Entry struct {
	Site        string    `yaml:"site"`
	Title       string    `yaml:"title"`
	LastChapter string    `yaml:"last_chapter"`
	UpdatedAt   time.Time `yaml:"updated_at"`
}

// File is the history as stored on disk.
type File struct {
	path    string
	Entries []Entry `yaml:"entries"`
}

// Load reads the history at path. A missing file is an empty history.
func Load(path string) (*File, error) {
	f := &File{path: path}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(b, f); err != nil {
		return nil, fmt.Errorf("failed to parse history %s: %w", path, err)
	}

	return f, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) find(site, title string) int {
	for i, e := range f.Entries {
		if strings.EqualFold(e.Site, site) && strings.EqualFold(e.Title, title) {
			return i
		}
	}

	return -1
}

// Last returns the last downloaded chapter label for title on site.
func (f *File) Last(site, title string) (string, bool) {
	i := f.find(site, title)
	if i < 0 {
		return "", false
	}

	return f.Entries[i].LastChapter, true
}

func (f *File) Record(site, title, chapter string, at time.Time) {
	e := Entry{Site: site, Title: title, LastChapter: chapter, UpdatedAt: at.UTC()}

	if i := f.find(site, title); i >= 0 {
		f.Entries[i] = e
		return
	}
	f.Entries = append(f.Entries, e)
}

func (f *File) Remove(site, title string) bool {
	i := f.find(site, title)
	if i < 0 {
		return false
	}

	f.Entries = append(f.Entries[:i], f.Entries[i+1:]...)
	return true
}

// All returns the entries ordered by site and title.
func (f *File) All() []Entry {
	out := append([]Entry(nil), f.Entries...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Site != out[j].Site {
			return out[i].Site < out[j].Site
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})

	return out
}

// Save writes the history through a temporary file so a crash never leaves
// it half written.
func (f *File) Save() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}

	return os.Rename(tmp, f.path)
}
