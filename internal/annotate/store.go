package annotate

// Store holds the ordered annotation sequence together with the undo and redo
// stacks. Every stack entry is a deep copy of the whole sequence; annotation
// counts stay small enough (tens, not thousands) that snapshot undo is cheaper
// than it looks. The store owns the sequence exclusively.
type Store struct {
	annotations []Annotation
	undoStack   [][]Annotation
	redoStack   [][]Annotation
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Annotations exposes the live sequence for rendering and hit testing.
// Callers must not retain the slice across mutations.
func (s *Store) Annotations() []Annotation {
	return s.annotations
}

// Len returns the number of annotations.
func (s *Store) Len() int { return len(s.annotations) }

// At returns the annotation at index. ok is false when the index is stale.
func (s *Store) At(index int) (Annotation, bool) {
	if index < 0 || index >= len(s.annotations) {
		return Annotation{}, false
	}
	return s.annotations[index], true
}

// SetAt overwrites the annotation at index, silently ignoring stale indices.
func (s *Store) SetAt(index int, a Annotation) {
	if index < 0 || index >= len(s.annotations) {
		return
	}
	s.annotations[index] = a
}

// Snapshot deep-copies the current sequence.
func (s *Store) Snapshot() []Annotation {
	return cloneAnnotations(s.annotations)
}

// PushUndoSnapshot records the pre-edit sequence and invalidates the redo
// history. It must be called before the mutation, never after.
func (s *Store) PushUndoSnapshot() {
	s.undoStack = append(s.undoStack, cloneAnnotations(s.annotations))
	s.redoStack = nil
}

// CommitSnapshot pushes an externally held pre-edit snapshot. Used by move
// gestures that capture their snapshot at drag start and only commit it if
// the drag actually changed geometry.
func (s *Store) CommitSnapshot(snapshot []Annotation) {
	s.undoStack = append(s.undoStack, snapshot)
	s.redoStack = nil
}

// Undo restores the most recent undo snapshot, moving the current state onto
// the redo stack. It reports whether anything changed.
func (s *Store) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	s.redoStack = append(s.redoStack, cloneAnnotations(s.annotations))
	s.annotations = s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	return true
}

// Redo is the mirror of Undo.
func (s *Store) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	s.undoStack = append(s.undoStack, cloneAnnotations(s.annotations))
	s.annotations = s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	return true
}

// CanUndo reports whether an undo snapshot exists.
func (s *Store) CanUndo() bool { return len(s.undoStack) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (s *Store) CanRedo() bool { return len(s.redoStack) > 0 }

// Add appends an annotation at the top of the z-order.
func (s *Store) Add(a Annotation) {
	s.annotations = append(s.annotations, a)
}

// RemoveAt deletes the annotation at index. Out-of-range indices are a no-op;
// callers validate before deleting but the store tolerates stale indices.
func (s *Store) RemoveAt(index int) {
	if index < 0 || index >= len(s.annotations) {
		return
	}
	s.annotations = append(s.annotations[:index], s.annotations[index+1:]...)
}

// FindTopmostHit returns the index of the highest annotation whose padded
// bounding box contains p, or -1. The scan runs from the end of the sequence
// because later annotations draw on top and must win hit-test ties.
func (s *Store) FindTopmostHit(p Point) int {
	for i := len(s.annotations) - 1; i >= 0; i-- {
		if s.annotations[i].Hit(p) {
			return i
		}
	}
	return -1
}

func cloneAnnotations(src []Annotation) []Annotation {
	out := make([]Annotation, len(src))
	copy(out, src)
	return out
}
