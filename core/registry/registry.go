// Package registry publishes the most recently loaded schema document.
// It is safe for concurrent use: one writer (the loader or watcher) and any
// number of readers (HTTP handlers, CLI commands).
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/artpar/schemakit/core/convention"
	"github.com/artpar/schemakit/core/schema"
)

// ErrNotFound is returned when a named definition does not exist.
var ErrNotFound = errors.New("not found")

// State is a published document with its metadata.
type State struct {
	Document    schema.Document
	Fingerprint string
	LoadedAt    time.Time

	// Generation increases by one on every change. Zero means nothing has
	// been published yet.
	Generation uint64
}

// Registry holds the current document and notifies listeners on change.
type Registry struct {
	mu sync.RWMutex

	state State

	// tables to entities
	tables map[string]string

	listeners []func(State)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		state:  State{Document: schema.Empty()},
		tables: make(map[string]string),
	}
}

// Publish replaces the current document. It reports whether the content
// changed; publishing an identical document only refreshes LoadedAt.
// A document in which two entities claim the same table is rejected.
func (r *Registry) Publish(doc schema.Document, at time.Time) (bool, error) {
	tables, conflicts := claimTables(doc)
	if len(conflicts) > 0 {
		return false, &ConflictError{Conflicts: conflicts}
	}

	fp, err := schema.Fingerprint(doc)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	if r.state.Generation > 0 && r.state.Fingerprint == fp {
		r.state.LoadedAt = at
		r.mu.Unlock()
		return false, nil
	}

	r.state = State{
		Document:    doc,
		Fingerprint: fp,
		LoadedAt:    at,
		Generation:  r.state.Generation + 1,
	}
	r.tables = tables
	state := r.state
	listeners := make([]func(State), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
	return true, nil
}

// OnChange registers fn to be called after each content change. Listeners
// run synchronously on the publishing goroutine, outside the lock.
func (r *Registry) OnChange(fn func(State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Current returns the published state. ok is false before the first
// publish, in which case the state carries an empty document.
func (r *Registry) Current() (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.state.Generation > 0
}

// Document returns the current document.
func (r *Registry) Document() schema.Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Document
}

// Entity returns a single entity by name.
func (r *Registry) Entity(name string) (schema.Entity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.state.Document.Schema[name]
	if !ok {
		return schema.Entity{}, fmt.Errorf("entity %q: %w", name, ErrNotFound)
	}
	return e, nil
}

// EntityForTable returns the entity owning table.
func (r *Registry) EntityForTable(table string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.tables[table]
	if !ok {
		return "", fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	return name, nil
}

// Tables returns the claimed table names in sorted order.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]string, 0, len(r.tables))
	for t := range r.tables {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// claimTables maps each entity's table to its owner and collects tables
// claimed more than once.
func claimTables(doc schema.Document) (map[string]string, []TableConflict) {
	owners := make(map[string][]string, len(doc.Schema))
	for _, name := range doc.EntityNames() {
		table := doc.Schema[name].Table
		if table == "" {
			table = convention.TableName(name)
		}
		owners[table] = append(owners[table], name)
	}

	tables := make(map[string]string, len(owners))
	var conflicts []TableConflict
	for table, names := range owners {
		if len(names) > 1 {
			conflicts = append(conflicts, TableConflict{Table: table, Entities: names})
			continue
		}
		tables[table] = names[0]
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].Table < conflicts[j].Table
	})
	return tables, conflicts
}

// TableConflict is a table claimed by several entities.
type TableConflict struct {
	Table    string
	Entities []string
}

func (c TableConflict) Error() string {
	return fmt.Sprintf("table %q claimed by %s", c.Table, strings.Join(c.Entities, ", "))
}

// ConflictError represents one or more table conflicts.
type ConflictError struct {
	Conflicts []TableConflict
}

// Error returns the conflict error message.
func (e *ConflictError) Error() string {
	var msgs []string
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("table conflicts detected:\n  - %s", strings.Join(msgs, "\n  - "))
}
