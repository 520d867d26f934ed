package inventory

import "strings"

// View is the filtered subset of the snapshot currently shown.
type View struct {
	Term    string
	Records []Record
	Total   int // records in the snapshot, before filtering
}

// Filter returns the records whose name contains term, ignoring case, in
// snapshot order. An empty term keeps every record. records is not modified.
func Filter(records []Record, term string) []Record {
	out := make([]Record, 0, len(records))
	if term == "" {
		return append(out, records...)
	}
	needle := strings.ToLower(term)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}
