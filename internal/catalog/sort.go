package catalog

import "strings"

// SortKey is the closed set of catalog orderings. The zero value is the
// default, title ascending.
type SortKey int

const (
	SortTitleAsc SortKey = iota
	SortTitleDesc
	SortYearAsc
	SortYearDesc
	SortRatingAsc
	SortRatingDesc
)

var sortNames = map[SortKey]string{
	SortTitleAsc:   "title_asc",
	SortTitleDesc:  "title_desc",
	SortYearAsc:    "year_asc",
	SortYearDesc:   "year_desc",
	SortRatingAsc:  "rating_asc",
	SortRatingDesc: "rating_desc",
}

var sortLabels = map[SortKey]string{
	SortTitleAsc:   "Title (A-Z)",
	SortTitleDesc:  "Title (Z-A)",
	SortYearAsc:    "Year (Oldest First)",
	SortYearDesc:   "Year (Newest First)",
	SortRatingAsc:  "Rating (Lowest First)",
	SortRatingDesc: "Rating (Highest First)",
}

// ParseSortKey maps a query-string value to a SortKey. Unknown or empty
// values fall back to SortTitleAsc.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range sortNames {
		if name == s {
			return k
		}
	}
	return SortTitleAsc
}

// Valid reports whether k is one of the declared keys.
func (k SortKey) Valid() bool {
	_, ok := sortNames[k]
	return ok
}

func (k SortKey) String() string {
	if name, ok := sortNames[k]; ok {
		return name
	}
	return sortNames[SortTitleAsc]
}

// DisplayName is the label shown in sort pickers.
func (k SortKey) DisplayName() string {
	if label, ok := sortLabels[k]; ok {
		return label
	}
	return sortLabels[SortTitleAsc]
}
