package engine

// Group is one row of a count-by-field aggregation.
// Key is nil for documents that lack the field.
type Group struct {
	Key   any   `json:"key"`
	Count int64 `json:"count"`
}

// GroupBy counts documents per distinct value of field, in first-seen order.
func GroupBy(docs []Document, field string) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)
	for _, d := range docs {
		res := d.Get(field)
		// Raw is the JSON text of the value, so "1" and 1 stay distinct.
		k := res.Raw
		if i, ok := index[k]; ok {
			groups[i].Count++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group{Key: res.Value(), Count: 1})
	}
	return groups
}
