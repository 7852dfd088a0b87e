package source

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lysyi3m/pulse-comb/app/content"
)

var validFilterFields = map[string]bool{
	"text":      true,
	"handle":    true,
	"permalink": true,
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run drops items rejected by the include/exclude rules.
func (f *Filterer) Run(items []content.Item, filters []ConfigFilter) []content.Item {
	if len(filters) == 0 {
		return items
	}

	kept := make([]content.Item, 0, len(items))
	for _, item := range items {
		if isFiltered, reason := f.applyFilters(item, filters); isFiltered {
			slog.Debug("Item filtered", "permalink", item.Permalink, "reason", reason)
			continue
		}
		kept = append(kept, item)
	}

	return kept
}

func (f *Filterer) applyFilters(item content.Item, filters []ConfigFilter) (bool, string) {
	for _, filter := range filters {
		value := f.getFieldValue(item, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(item content.Item, field string) string {
	switch field {
	case "text":
		return item.Text
	case "handle":
		return item.CreatorHandle
	case "permalink":
		return item.Permalink
	default:
		return ""
	}
}
