package store

// Free functions over row slices. These replace ad hoc per-handler filtering
// of query results; they never mutate their input.

// FilterBy returns the rows whose field equals value.
func FilterBy(rows []Row, field, value string) []Row {
	var out []Row
	for _, r := range rows {
		if r.String(field) == value {
			out = append(out, r)
		}
	}
	return out
}

// FilterByNot returns the rows whose field differs from value.
func FilterByNot(rows []Row, field, value string) []Row {
	var out []Row
	for _, r := range rows {
		if r.String(field) != value {
			out = append(out, r)
		}
	}
	return out
}

// UniqueBy returns the distinct values of field across rows, in first-seen
// order.
func UniqueBy(rows []Row, field string) []string {
	seen := make(map[string]struct{}, len(rows))
	var out []string
	for _, r := range rows {
		v := r.String(field)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AnyWhere reports whether some row has field equal to value.
func AnyWhere(rows []Row, field, value string) bool {
	for _, r := range rows {
		if r.String(field) == value {
			return true
		}
	}
	return false
}

// FirstWhere returns the first row whose field equals value.
func FirstWhere(rows []Row, field, value string) (Row, bool) {
	for _, r := range rows {
		if r.String(field) == value {
			return r, true
		}
	}
	return nil, false
}
