package service

// ValidationResult partitions one run's items by membership verdict. Every
// requested item lands in exactly one of the two lists, in the order the
// items were checked.
type ValidationResult struct {
	Valid   []string
	Invalid []string
}

// Record files item under the verdict's list.
func (r *ValidationResult) Record(item string, valid bool) {
	if valid {
		r.Valid = append(r.Valid, item)
	} else {
		r.Invalid = append(r.Invalid, item)
	}
}

// Total is the number of items across both partitions.
func (r *ValidationResult) Total() int {
	return len(r.Valid) + len(r.Invalid)
}
