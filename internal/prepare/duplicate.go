package prepare

// firstDuplicate returns the first element of items whose key (as
// produced by keyOf) repeats a key already seen, or false if there are
// none. Mirrors prepare_queries.rs's generic has_duplicate, reused for
// both the returned-column check (spec §4.D step 3) and the resolved
// nullable-annotation check (step 4), rather than inlining the same
// scan twice.
func firstDuplicate[T any, K comparable](items []T, keyOf func(T) K) (T, bool) {
	seen := make(map[K]struct{}, len(items))
	for _, item := range items {
		k := keyOf(item)
		if _, ok := seen[k]; ok {
			return item, true
		}
		seen[k] = struct{}{}
	}
	var zero T
	return zero, false
}
