package posts

import (
	"sort"
	"strings"
)

// filterPosts applies the authoritative in-memory predicates. search matches
// title, category name or author username; category matches a category name
// substring or an exact category id. Both are case-insensitive substring
// matches and both must hold when set.
func filterPosts(views []PostView, search, category string) []PostView {
	if search == "" && category == "" {
		return views
	}
	out := make([]PostView, 0, len(views))
	for _, v := range views {
		if search != "" && !matchesSearch(v, search) {
			continue
		}
		if category != "" && !matchesCategory(v, category) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func matchesSearch(v PostView, search string) bool {
	if containsFold(v.Title, search) {
		return true
	}
	if v.Category != nil && containsFold(v.Category.Name, search) {
		return true
	}
	return v.Author != nil && containsFold(v.Author.Username, search)
}

func matchesCategory(v PostView, filter string) bool {
	if v.Category == nil {
		return false
	}
	return containsFold(v.Category.Name, filter) || v.categoryID == filter
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func sortNewestFirst(views []PostView) {
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}

// paginate returns the 1-based page of size limit. Pages past the end are
// empty, never nil.
func paginate(views []PostView, page, limit int) []PostView {
	if page-1 > len(views)/limit {
		return []PostView{}
	}
	start := (page - 1) * limit
	if start >= len(views) {
		return []PostView{}
	}
	end := min(start+limit, len(views))
	return views[start:end]
}
