package relative

import "strings"

// Groups maps region names to a coarser component label. Membership is a
// static configuration injected at construction, not derived from data.
type Groups map[string]string

// DefaultGroups maps the spermatheca regions onto their three structural
// components.
func DefaultGroups() Groups {
	return Groups{
		"Spermatheca-Uterine junction": "valve",
		"Spermatheca neck distal":      "neck",
		"Spermatheca neck proximal":    "neck",
		"Spermatheca bag distal":       "bag",
		"Spermatheca bag proximal":     "bag",
	}
}

// GroupFor resolves the component label for a table or file name. Matching
// is case-insensitive with spaces and underscores treated alike, so
// "Spermatheca_neck_distal_filtered" still resolves to "neck".
func (g Groups) GroupFor(name string) (string, bool) {
	needle := normalizeName(name)
	for region, group := range g {
		if strings.Contains(needle, normalizeName(region)) {
			return group, true
		}
	}
	return "", false
}

func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}
