package edgesync

// Diff returns the subset of local whose id is not present in
// existingIDs, preserving local's order — the edge's view of "what the
// server is missing," per spec.md 4.13's "diff by stem"/"diff by
// collection id set".
func Diff(local []LocalRecord, existingIDs []string) []LocalRecord {
	present := make(map[string]struct{}, len(existingIDs))
	for _, id := range existingIDs {
		present[id] = struct{}{}
	}
	out := make([]LocalRecord, 0, len(local))
	for _, r := range local {
		if _, ok := present[r.ID]; !ok {
			out = append(out, r)
		}
	}
	return out
}
