package db

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestToIsoString(t *testing.T) {
	ts := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string passes through", "2026-03-15", "2026-03-15"},
		{"native time", ts, "2026-03-15T10:30:00Z"},
		{"store datetime", primitive.NewDateTimeFromTime(ts), "2026-03-15T10:30:00Z"},
		{"seconds object", map[string]any{"seconds": float64(ts.Unix())}, "2026-03-15T10:30:00Z"},
		{"nil", nil, ""},
		{"number", 42, ""},
		{"bool", true, ""},
		{"plain object", map[string]any{"foo": "bar"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toIsoString(tt.value))
		})
	}
}

func TestNormalizeArray(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"mixed types filtered", []any{"a", 1, "", "  ", "b", nil}, []string{"a", "b"}},
		{"string slice", []string{"x", "", "y"}, []string{"x", "y"}},
		{"nil", nil, []string{}},
		{"scalar", "not-an-array", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeArray(tt.value)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"int", 7, 7, true},
		{"int32", int32(7), 7, true},
		{"int64", int64(7), 7, true},
		{"float64", 2.5, 2.5, true},
		{"numeric string", "12", 12, true},
		{"empty string", "", 0, false},
		{"blank string", "   ", 0, false},
		{"garbage string", "abc", 0, false},
		{"inf string", "Inf", 0, false},
		{"negative inf string", "-Inf", 0, false},
		{"nan string", "NaN", 0, false},
		{"inf float", math.Inf(1), 0, false},
		{"nan float", math.NaN(), 0, false},
		{"inf float32", float32(math.Inf(-1)), 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toNumber(tt.value)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestMapTimeline_DropsIncompleteEntries(t *testing.T) {
	events := mapTimeline([]any{
		map[string]any{"date": "2026-01-10", "event": "Registration opens"},
		map[string]any{"date": "2026-02-01", "event": "Exam day", "status": "active"},
		map[string]any{"event": "No date"},
		map[string]any{"date": "2026-03-01"},
		"not-a-map",
	})

	require.Len(t, events, 2)
	assert.Equal(t, "upcoming", events[0].Status)
	assert.Equal(t, "active", events[1].Status)
}

func TestMapTimeline_NonArray(t *testing.T) {
	assert.Empty(t, mapTimeline("nope"))
	assert.NotNil(t, mapTimeline(nil))
}

func TestMapResources_DropsEntriesMissingRequiredFields(t *testing.T) {
	resources := mapResources([]any{
		map[string]any{"id": "r1", "title": "Syllabus", "url": "https://x.test/s.pdf", "type": "PDF"},
		map[string]any{"id": "r2", "title": "", "url": "https://x.test"},
		map[string]any{"title": "No id", "url": "https://x.test"},
		map[string]any{"id": "r3", "title": "Weird type", "url": "https://x.test", "type": "slideshow"},
	})

	require.Len(t, resources, 2)
	assert.Equal(t, "pdf", resources[0].Type)
	assert.Equal(t, "link", resources[1].Type)
}

func TestMapContactInfo(t *testing.T) {
	assert.Nil(t, mapContactInfo(nil))
	assert.Nil(t, mapContactInfo(map[string]any{}))
	assert.Nil(t, mapContactInfo(map[string]any{"email": "", "phone": ""}))

	info := mapContactInfo(map[string]any{"email": "help@x.test"})
	require.NotNil(t, info)
	assert.Equal(t, "help@x.test", info.Email)
}

func TestMapExamPattern(t *testing.T) {
	assert.Nil(t, mapExamPattern(nil))
	assert.Nil(t, mapExamPattern("scalar"))

	pattern := mapExamPattern(map[string]any{
		"total_questions":             50,
		"durationMinutes":             "90",
		"negativeMarking":             true,
		"negative_marks_per_question": 0.25,
		"sections": []any{
			map[string]any{"name": "Maths", "questions": 25, "marks": 100},
			map[string]any{"questions": 25}, // nameless, dropped
		},
	})

	require.NotNil(t, pattern)
	require.NotNil(t, pattern.TotalQuestions)
	assert.Equal(t, 50, *pattern.TotalQuestions)
	require.NotNil(t, pattern.DurationMinutes)
	assert.Equal(t, 90, *pattern.DurationMinutes)
	assert.True(t, pattern.NegativeMarking)
	require.NotNil(t, pattern.NegativeMarksPerQuestion)
	assert.Equal(t, 0.25, *pattern.NegativeMarksPerQuestion)
	require.Len(t, pattern.Sections, 1)
	assert.Equal(t, "Maths", pattern.Sections[0].Name)
}

func TestMapExamPatterns_GeneratesMissingIDs(t *testing.T) {
	blocks := mapExamPatterns([]any{
		map[string]any{"id": "block-1", "totalQuestions": 10},
		map[string]any{"totalQuestions": 20},
	})

	require.Len(t, blocks, 2)
	assert.Equal(t, "block-1", blocks[0].ID)
	assert.NotEmpty(t, blocks[1].ID)
	assert.Equal(t, "single", blocks[1].ClassSelection.Type)
}

func TestMapClassSelection(t *testing.T) {
	sel := mapClassSelection(map[string]any{
		"type":            "range",
		"selectedClasses": []any{"6", "7"},
		"rangeStart":      "6",
		"rangeEnd":        "8",
	})
	assert.Equal(t, "range", sel.Type)
	assert.Equal(t, []string{"6", "7"}, sel.SelectedClasses)
	assert.Equal(t, "6", sel.RangeStart)
	assert.Equal(t, "8", sel.RangeEnd)

	fallback := mapClassSelection("garbage")
	assert.Equal(t, "single", fallback.Type)
	assert.NotNil(t, fallback.SelectedClasses)

	invalid := mapClassSelection(map[string]any{"type": "everything"})
	assert.Equal(t, "single", invalid.Type)
}

func TestMapCustomTabs(t *testing.T) {
	tabs := mapCustomTabs([]any{
		map[string]any{"id": "t1", "label": "FAQ", "order": 2, "required": true, "content": "hello"},
		map[string]any{"id": "t2", "label": "Rules"},
		map[string]any{"id": "t3"},        // no label, dropped
		map[string]any{"label": "orphan"}, // no id, dropped
	})

	require.Len(t, tabs, 2)
	assert.Equal(t, 2, tabs[0].Order)
	assert.True(t, tabs[0].Required)
	assert.Equal(t, "rich-text", tabs[1].Type)
	assert.Equal(t, 0, tabs[1].Order)
}
