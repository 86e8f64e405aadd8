package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"School Entrance", "school-entrance"},
		{"  STEM & Robotics  ", "stem-robotics"},
		{"already-slugged", "already-slugged"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}

func TestTitleCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"school-entrance", "School Entrance"},
		{"STEM_and_robotics", "Stem And Robotics"},
		{"one", "One"},
		{"école primaire", "École Primaire"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, titleCase(tt.in), "titleCase(%q)", tt.in)
	}
}

func TestCategoryTargets(t *testing.T) {
	targets := categoryTargets("School Entrance")
	for _, want := range []string{"school entrance", "school-entrance"} {
		_, ok := targets[want]
		assert.True(t, ok, "missing target %q", want)
	}
}

func TestMatchesCategoryData(t *testing.T) {
	targets := categoryTargets("school-entrance")

	tests := []struct {
		name string
		data map[string]any
		want bool
	}{
		{"exact slug", map[string]any{"category": "school-entrance"}, true},
		{"title cased", map[string]any{"category": "School Entrance"}, true},
		{"category name snake key", map[string]any{"category_name": "School Entrance"}, true},
		{"category id", map[string]any{"categoryId": "school-entrance"}, true},
		{"label field", map[string]any{"categoryLabel": "School Entrance"}, true},
		{"unrelated", map[string]any{"category": "Arts"}, false},
		{"empty", map[string]any{}, false},
		{"non-string", map[string]any{"category": 42}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesCategoryData(tt.data, targets))
		})
	}
}
