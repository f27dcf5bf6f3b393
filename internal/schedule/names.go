package schedule

// Names is an insertion-ordered set of change names.
type Names []string

// Add appends name unless it is already present.
func (n Names) Add(name string) Names {
	if n.Has(name) {
		return n
	}
	return append(n, name)
}

// Has reports whether name is present.
func (n Names) Has(name string) bool {
	for _, v := range n {
		if v == name {
			return true
		}
	}
	return false
}
