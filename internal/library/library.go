// Package library persists saved shader sources in a JSON file.
//
// Every mutating call re-reads the file first, so a viewer and a settings
// panel running side by side see each other's changes.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Entry is one saved shader.
type Entry struct {
	ID     int64     `json:"id"`
	Name   string    `json:"name"`
	Source string    `json:"code"`
	Date   time.Time `json:"date"`
}

// Library is a JSON-backed list of entries plus the entry currently being
// edited.
type Library struct {
	mu      sync.Mutex
	path    string
	now     func() time.Time
	entries []Entry
	current int64
}

// Option configures a Library.
type Option func(*Library)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// Open loads the library at path. A missing file is an empty library.
func Open(path string, opts ...Option) (*Library, error) {
	l := &Library{path: path, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the backing file.
func (l *Library) Path() string { return l.path }

func (l *Library) load() error {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		l.entries = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("read library: %w", err)
	}
	entries, err := decode(data)
	if err != nil {
		return fmt.Errorf("library %s: %w", l.path, err)
	}
	l.entries = entries
	return nil
}

func decode(data []byte) ([]Entry, error) {
	var entries []Entry
	if len(data) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}
	if err := json.Unmarshal(repair(data), &entries); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return entries, nil
}

func (l *Library) store() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode library: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write library: %w", err)
	}
	return os.Rename(tmp, l.path)
}

// update reloads the file, applies fn and writes the result back.
func (l *Library) update(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.load(); err != nil {
		return err
	}
	fn()
	return l.store()
}

// Reload re-reads the file.
func (l *Library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// List returns the entries newest first.
func (l *Library) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Get looks up an entry by id.
func (l *Library) Get(id int64) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Current returns the id of the entry being edited, or 0.
func (l *Library) Current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Select marks id as the entry being edited.
func (l *Library) Select(id int64) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.index(id)
	if i < 0 {
		return Entry{}, false
	}
	l.current = id
	return l.entries[i], true
}

// AutoSave records source after a successful compile. The current entry is
// updated in place; an entry with identical source becomes current; anything
// else is appended under a name derived from the clock.
func (l *Library) AutoSave(source string) (Entry, error) {
	var saved Entry
	err := l.update(func() {
		now := l.now()
		if i := l.index(l.current); i >= 0 && l.current != 0 {
			l.entries[i].Source = source
			l.entries[i].Date = now
			saved = l.entries[i]
			return
		}
		for i := range l.entries {
			if l.entries[i].Source == source {
				l.entries[i].Date = now
				l.current = l.entries[i].ID
				saved = l.entries[i]
				return
			}
		}
		saved = l.appendEntry(fmt.Sprintf("Shader %d/%d %d:%02d", int(now.Month()), now.Day(), now.Hour(), now.Minute()), source, now)
	})
	return saved, err
}

// Create appends a new entry with a date-only name and makes it current.
func (l *Library) Create(source string) (Entry, error) {
	var created Entry
	err := l.update(func() {
		now := l.now()
		created = l.appendEntry(fmt.Sprintf("Shader %d/%d", int(now.Month()), now.Day()), source, now)
	})
	return created, err
}

// Rename changes an entry's name.
func (l *Library) Rename(id int64, name string) error {
	found := false
	err := l.update(func() {
		if i := l.index(id); i >= 0 {
			l.entries[i].Name = name
			found = true
		}
	})
	if err == nil && !found {
		return fmt.Errorf("no saved shader with id %d", id)
	}
	return err
}

// Delete removes id. When it was current, the oldest remaining entry
// becomes current and is returned with ok set.
func (l *Library) Delete(id int64) (next Entry, ok bool, err error) {
	err = l.update(func() {
		i := l.index(id)
		if i < 0 {
			return
		}
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		if l.current != id {
			return
		}
		l.current = 0
		if len(l.entries) > 0 {
			next, ok = l.entries[0], true
			l.current = next.ID
		}
	})
	return next, ok, err
}

func (l *Library) appendEntry(name, source string, now time.Time) Entry {
	id := now.UnixMilli()
	for _, e := range l.entries {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	e := Entry{ID: id, Name: name, Source: source, Date: now}
	l.entries = append(l.entries, e)
	l.current = id
	return e
}

func (l *Library) index(id int64) int {
	for i := range l.entries {
		if l.entries[i].ID == id {
			return i
		}
	}
	return -1
}

// FormatDate renders date relative to now: "just now", minutes, hours, and
// a plain date past one day.
func FormatDate(date, now time.Time) string {
	diff := now.Sub(date)
	minutes := int(diff / time.Minute)
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d min ago", minutes)
	}
	hours := int(diff / time.Hour)
	if hours < 24 {
		return fmt.Sprintf("%d h ago", hours)
	}
	return date.Local().Format("2006-01-02")
}
