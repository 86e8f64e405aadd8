package db

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidyarthi-platform/opportunity-hub/internal/models"
)

// The normalizers below coerce loosely-typed store values into the canonical
// in-memory shape. They never panic: garbage in, degraded-but-valid out. A
// malformed sub-field degrades to its empty form instead of failing the
// containing document.

// toIsoString accepts a string (passed through), a native time, a store
// timestamp, or a Firestore-export style {seconds, nanoseconds} object.
// Anything else yields "".
func toIsoString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.UTC().Format(time.RFC3339)
	case primitive.DateTime:
		return v.Time().UTC().Format(time.RFC3339)
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0).UTC().Format(time.RFC3339)
	}

	if m, ok := asMap(value); ok {
		if secs, ok := toNumber(m["seconds"]); ok {
			return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339)
		}
	}
	return ""
}

// normalizeArray keeps only non-blank string elements; any non-array input
// yields an empty (non-nil) slice.
func normalizeArray(value any) []string {
	out := []string{}
	switch v := value.(type) {
	case []string:
		for _, item := range v {
			if strings.TrimSpace(item) != "" {
				out = append(out, item)
			}
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case bson.A:
		return normalizeArray([]any(v))
	}
	return out
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return finiteNumber(float64(v))
	case float64:
		return finiteNumber(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return finiteNumber(f)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return finiteNumber(f)
	}
	return 0, false
}

// finiteNumber rejects Inf and NaN, which ParseFloat and stored doubles can
// both produce; a non-finite value is treated as absent.
func finiteNumber(f float64) (float64, bool) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func toInt(value any) *int {
	if f, ok := toNumber(value); ok {
		n := int(f)
		return &n
	}
	return nil
}

func toFloat(value any) *float64 {
	if f, ok := toNumber(value); ok {
		return &f
	}
	return nil
}

// asString stringifies scalar values; non-scalars yield "".
func asString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	if f, ok := toNumber(value); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func asNonEmptyString(value any) string {
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func asBool(value any) bool {
	b, ok := value.(bool)
	return ok && b
}

func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case bson.M:
		return map[string]any(v), true
	case primitive.D:
		return v.Map(), true
	}
	return nil, false
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case bson.A:
		return []any(v), true
	}
	return nil, false
}

// first returns the first present key, for fields stored under both camel and
// snake case by older admin forms.
func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func mapTimeline(value any) []models.TimelineEvent {
	items, ok := asSlice(value)
	if !ok {
		return []models.TimelineEvent{}
	}

	events := []models.TimelineEvent{}
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		date := toIsoString(entry["date"])
		event := asString(entry["event"])
		if date == "" || event == "" {
			continue
		}
		status := asString(entry["status"])
		if status == "" {
			status = "upcoming"
		}
		events = append(events, models.TimelineEvent{Date: date, Event: event, Status: status})
	}
	return events
}

func mapExamSections(value any) []models.ExamSection {
	items, ok := asSlice(value)
	if !ok {
		return []models.ExamSection{}
	}

	sections := []models.ExamSection{}
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if name == "" {
			continue
		}
		sections = append(sections, models.ExamSection{
			Name:      name,
			Questions: toInt(entry["questions"]),
			Marks:     toInt(entry["marks"]),
		})
	}
	return sections
}

func mapExamPattern(value any) *models.ExamPattern {
	entry, ok := asMap(value)
	if !ok {
		return nil
	}

	return &models.ExamPattern{
		TotalQuestions:           toInt(first(entry, "totalQuestions", "total_questions")),
		DurationMinutes:          toInt(first(entry, "durationMinutes", "duration_minutes")),
		NegativeMarking:          asBool(first(entry, "negativeMarking", "negative_marking")),
		NegativeMarksPerQuestion: toFloat(first(entry, "negativeMarksPerQuestion", "negative_marks_per_question")),
		Sections:                 mapExamSections(entry["sections"]),
	}
}

func mapClassSelection(value any) models.ClassSelection {
	entry, ok := asMap(value)
	if !ok {
		return models.ClassSelection{Type: "single", SelectedClasses: []string{}}
	}

	selType, _ := entry["type"].(string)
	switch selType {
	case "single", "multiple", "range":
	default:
		selType = "single"
	}

	rangeStart, _ := entry["rangeStart"].(string)
	rangeEnd, _ := entry["rangeEnd"].(string)

	return models.ClassSelection{
		Type:            selType,
		SelectedClasses: normalizeArray(entry["selectedClasses"]),
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	}
}

func mapExamPatterns(value any) []models.ExamPatternBlock {
	items, ok := asSlice(value)
	if !ok {
		return []models.ExamPatternBlock{}
	}

	blocks := []models.ExamPatternBlock{}
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		pattern := mapExamPattern(entry)
		if pattern == nil {
			continue
		}

		id, _ := entry["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}

		blocks = append(blocks, models.ExamPatternBlock{
			ExamPattern:    *pattern,
			ID:             id,
			ClassSelection: mapClassSelection(entry["classSelection"]),
		})
	}
	return blocks
}

func mapResourceType(value any) string {
	s, ok := value.(string)
	if !ok {
		return "link"
	}
	switch normalized := strings.ToLower(strings.TrimSpace(s)); normalized {
	case "pdf", "video", "link":
		return normalized
	default:
		return "link"
	}
}

func mapResources(value any) []models.Resource {
	items, ok := asSlice(value)
	if !ok {
		return []models.Resource{}
	}

	resources := []models.Resource{}
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		id := asNonEmptyString(entry["id"])
		title := asNonEmptyString(entry["title"])
		url := asNonEmptyString(entry["url"])
		if id == "" || title == "" || url == "" {
			continue
		}
		resources = append(resources, models.Resource{
			ID:          id,
			Title:       title,
			URL:         url,
			Type:        mapResourceType(entry["type"]),
			Description: asNonEmptyString(entry["description"]),
		})
	}
	return resources
}

func mapContactInfo(value any) *models.ContactInfo {
	entry, ok := asMap(value)
	if !ok {
		return nil
	}

	email, _ := entry["email"].(string)
	phone, _ := entry["phone"].(string)
	website, _ := entry["website"].(string)
	if email == "" && phone == "" && website == "" {
		return nil
	}

	return &models.ContactInfo{Email: email, Phone: phone, Website: website}
}

func mapCustomTabs(value any) []models.CustomTab {
	items, ok := asSlice(value)
	if !ok {
		return []models.CustomTab{}
	}

	tabs := []models.CustomTab{}
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		id, _ := entry["id"].(string)
		label, _ := entry["label"].(string)
		if id == "" || label == "" {
			continue
		}

		tabType, _ := entry["type"].(string)
		if tabType == "" {
			tabType = "rich-text"
		}

		order := 0
		if n := toInt(entry["order"]); n != nil {
			order = *n
		}

		tabs = append(tabs, models.CustomTab{
			ID:       id,
			Label:    label,
			Type:     tabType,
			Order:    order,
			Required: asBool(entry["required"]),
			Content:  entry["content"],
		})
	}
	return tabs
}
