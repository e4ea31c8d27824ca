package mutation

// NoChanges is reported when an edit leaves every stored value as it was.
const NoChanges = "No changes to update"

// Change is one column an edit will persist.
type Change struct {
	Column string
	Key    string
	Value  any
}

// WriteSet is the minimal set of columns an edit persists, in the order the
// diff discovered them.
type WriteSet struct {
	changes []Change
}

// Add records a column to write. Key is the name the value is reported under
// in responses and events.
func (w *WriteSet) Add(column, key string, value any) {
	for i, c := range w.changes {
		if c.Column == column {
			w.changes[i].Value = value
			return
		}
	}
	w.changes = append(w.changes, Change{Column: column, Key: key, Value: value})
}

// Diff adds column when candidate is set and differs from current.
func Diff[T comparable](w *WriteSet, column, key string, candidate Field[T], current T) {
	if candidate.Differs(current) {
		w.Add(column, key, candidate.Value)
	}
}

func (w *WriteSet) Len() int {
	return len(w.changes)
}

func (w *WriteSet) Empty() bool {
	return len(w.changes) == 0
}

// Has reports whether column is part of the set.
func (w *WriteSet) Has(column string) bool {
	for _, c := range w.changes {
		if c.Column == column {
			return true
		}
	}
	return false
}

// Changes returns the entries in discovery order.
func (w *WriteSet) Changes() []Change {
	out := make([]Change, len(w.changes))
	copy(out, w.changes)
	return out
}

// Columns returns the set keyed by column name, ready for an UPDATE.
func (w *WriteSet) Columns() map[string]any {
	cols := make(map[string]any, len(w.changes))
	for _, c := range w.changes {
		cols[c.Column] = c.Value
	}
	return cols
}

// Payload returns the set keyed by response name.
func (w *WriteSet) Payload() map[string]any {
	out := make(map[string]any, len(w.changes))
	for _, c := range w.changes {
		out[c.Key] = c.Value
	}
	return out
}
