package recommend

import "sort"

// categoryMapping groups the catalog's sub categories under the main
// categories the storefront navigates by.
var categoryMapping = map[string][]string{
	"bed":     {"bed_frame", "mattress"},
	"sofa":    {"sofa", "recliner"},
	"table":   {"dining_table", "floor_table", "desk", "sofa_table"},
	"chair":   {"chair", "stool", "bench", "floor_chair"},
	"storage": {"drawer", "storage_closet", "tv_stand", "shelf", "cabinet", "bookcase", "wardrobe", "hanger"},
	"fabric":  {"duvet"},
	"decor":   {"light", "plant", "mirror", "dresser"},
}

// SubCategories returns the sub categories of main and whether main is known.
func SubCategories(main string) ([]string, bool) {
	subs, ok := categoryMapping[main]
	if !ok {
		return nil, false
	}
	out := make([]string, len(subs))
	copy(out, subs)
	return out, true
}

// MainCategories lists the known main categories in sorted order.
func MainCategories() []string {
	out := make([]string, 0, len(categoryMapping))
	for k := range categoryMapping {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
