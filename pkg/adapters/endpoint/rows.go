package endpoint

// NewRows returns Rows over an in-memory slice of bindings.
// Client implementations that buffer a full response can return it directly.
func NewRows(bindings []Binding) Rows {
	return &sliceRows{bindings: bindings, pos: -1}
}

type sliceRows struct {
	bindings []Binding
	pos      int
	closed   bool
}

func (r *sliceRows) Next() bool {
	if r.closed || r.pos+1 >= len(r.bindings) {
		return false
	}
	r.pos++
	return true
}

func (r *sliceRows) Binding() Binding {
	if r.pos < 0 || r.pos >= len(r.bindings) {
		return nil
	}
	return r.bindings[r.pos]
}

func (r *sliceRows) Err() error { return nil }

func (r *sliceRows) Close() error {
	r.closed = true
	return nil
}
