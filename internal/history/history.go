// Package history keeps undo and redo stacks of annotation list snapshots.
package history

import "github.com/example/annotator/internal/annotation"

// Manager stores deep copies of the annotation list. Snapshots are taken at
// gesture boundaries by the caller, never per pointer move.
type Manager struct {
	past   [][]annotation.Annotation
	future [][]annotation.Annotation
	limit  int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLimit caps the number of undo steps kept. Zero means unlimited.
func WithLimit(n int) Option { return func(m *Manager) { m.limit = n } }

// New returns an empty Manager.
func New(opts ...Option) *Manager {
	m := &Manager{}
	for _, o := range opts {
		o(m)
	}
	return m
}

// RecordChange pushes the pre-change snapshot and drops any redo branch.
func (m *Manager) RecordChange(snapshot []annotation.Annotation) {
	m.past = append(m.past, annotation.CloneList(snapshot))
	if m.limit > 0 && len(m.past) > m.limit {
		m.past = m.past[len(m.past)-m.limit:]
	}
	m.future = nil
}

// Undo returns the previous snapshot, moving current onto the redo stack.
// With nothing to undo it returns current unchanged.
func (m *Manager) Undo(current []annotation.Annotation) []annotation.Annotation {
	if len(m.past) == 0 {
		return current
	}
	prev := m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.future = append([][]annotation.Annotation{annotation.CloneList(current)}, m.future...)
	return annotation.CloneList(prev)
}

// Redo is the mirror of Undo.
func (m *Manager) Redo(current []annotation.Annotation) []annotation.Annotation {
	if len(m.future) == 0 {
		return current
	}
	next := m.future[0]
	m.future = m.future[1:]
	m.past = append(m.past, annotation.CloneList(current))
	return annotation.CloneList(next)
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.past = nil
	m.future = nil
}

func (m *Manager) CanUndo() bool { return len(m.past) > 0 }
func (m *Manager) CanRedo() bool { return len(m.future) > 0 }

// Depth reports the number of undo and redo entries.
func (m *Manager) Depth() (undo, redo int) { return len(m.past), len(m.future) }
