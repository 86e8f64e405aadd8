package db

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)
	wordSplitRe = regexp.MustCompile(`[\s_-]+`)
)

func normalizeString(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func slugify(value string) string {
	normalized := normalizeString(value)
	if normalized == "" {
		return ""
	}
	return strings.Trim(slugCleanRe.ReplaceAllString(normalized, "-"), "-")
}

func titleCase(value string) string {
	parts := wordSplitRe.Split(value, -1)
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		first, size := utf8.DecodeRuneInString(part)
		words = append(words, strings.ToUpper(string(first))+strings.ToLower(part[size:]))
	}
	return strings.Join(words, " ")
}

// categoryTargets builds the set of normalized strings a requested category
// may be stored as. Category values are free text entered through several
// admin forms over the years, so slug, spaced and title-cased variants all
// occur in the data.
func categoryTargets(raw string) map[string]struct{} {
	targets := map[string]struct{}{}
	add := func(value string) {
		if value != "" {
			targets[value] = struct{}{}
		}
	}

	add(normalizeString(raw))
	add(slugify(raw))
	add(normalizeString(strings.ReplaceAll(raw, "-", " ")))

	if tc := titleCase(raw); tc != "" {
		add(normalizeString(tc))
		add(slugify(tc))
	}
	return targets
}

// matchesCategoryData reports whether a raw document's category fields hit any
// of the normalized target strings.
func matchesCategoryData(data map[string]any, targets map[string]struct{}) bool {
	category := asString(data["category"])
	categoryName := asString(first(data, "categoryName", "category_name"))
	categoryLabel := asString(first(data, "categoryLabel", "category_label"))
	categoryID := asString(first(data, "categoryId", "category_id"))

	candidates := []string{
		normalizeString(category),
		normalizeString(categoryName),
		normalizeString(categoryLabel),
		normalizeString(categoryID),
		slugify(category),
		slugify(categoryName),
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, ok := targets[candidate]; ok {
			return true
		}
	}
	return false
}
