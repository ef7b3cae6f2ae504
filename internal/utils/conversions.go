package utils

import (
	"strconv"
	"strings"
)

// SplitList splits a comma separated list, trimming blanks and dropping empty items
func SplitList(s string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// FormatGrade renders a grade without trailing zeros (4.50 -> "4.5")
func FormatGrade(grade float64) string {
	return strconv.FormatFloat(grade, 'f', -1, 64)
}

// ParseGrade accepts both "4.5" and "4,5"
func ParseGrade(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

// MediaURL resolves a backend media path against base. Absolute URLs are returned unchanged.
func MediaURL(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http") {
		return path
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// Ptr returns a pointer to a copy of v, for optional API fields
func Ptr[T any](v T) *T {
	return &v
}
