package catalog

import "sort"

// Curate drops items whose group code is excluded and orders the remainder by
// group code, then product code. The input slice is not modified.
func Curate(items []Item, excludedGroups []string) []Item {
	excluded := make(map[string]struct{}, len(excludedGroups))
	for _, g := range excludedGroups {
		excluded[g] = struct{}{}
	}

	curated := make([]Item, 0, len(items))
	for _, item := range items {
		if _, skip := excluded[item.GroupCode]; skip {
			continue
		}
		curated = append(curated, item)
	}

	sort.SliceStable(curated, func(i, j int) bool {
		if curated[i].GroupCode != curated[j].GroupCode {
			return curated[i].GroupCode < curated[j].GroupCode
		}
		return curated[i].Code < curated[j].Code
	})
	return curated
}
