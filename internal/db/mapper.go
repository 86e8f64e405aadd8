package db

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/vidyarthi-platform/opportunity-hub/internal/models"
)

// descriptionPolicy strips unsafe markup from admin-entered HTML descriptions
// before they reach any consumer.
var descriptionPolicy = bluemonday.UGCPolicy()

// mapOpportunity produces one canonical Opportunity from one raw document.
// It never fails: unexpected or missing fields degrade to defaults. The
// denormalized category/organizer strings are read as-is here; resolving
// categoryId/organizerId happens later in the enrichment pass so a batch of
// N documents costs two lookups, not 2N.
func mapOpportunity(doc Document) *models.Opportunity {
	data := doc.Data

	mode := models.ModeOnline
	switch models.OpportunityMode(asNonEmptyString(data["mode"])) {
	case models.ModeOffline:
		mode = models.ModeOffline
	case models.ModeHybrid:
		mode = models.ModeHybrid
	}

	state := asNonEmptyString(data["state"])
	if !models.ValidState(state) {
		state = ""
	}

	registrationMode := models.RegistrationExternal
	if asString(data["registrationMode"]) == string(models.RegistrationInternal) {
		registrationMode = models.RegistrationInternal
	}

	registrationCount := 0
	if n, ok := toNumber(data["registrationCount"]); ok && n > 0 {
		registrationCount = int(n)
	}
	views := 0
	if n, ok := toNumber(data["views"]); ok && n > 0 {
		views = int(n)
	}

	targetAudience := asNonEmptyString(data["targetAudience"])
	switch targetAudience {
	case "students", "schools", "both":
	default:
		targetAudience = ""
	}

	participationType := asNonEmptyString(data["participationType"])
	switch participationType {
	case "individual", "team":
	default:
		participationType = ""
	}

	eligibilityType := asNonEmptyString(data["eligibilityType"])
	switch eligibilityType {
	case "grade", "age", "both":
	default:
		eligibilityType = ""
	}

	description := asString(data["description"])
	if description != "" {
		description = descriptionPolicy.Sanitize(description)
	}

	return &models.Opportunity{
		ID:    doc.ID,
		Title: asString(data["title"]),
		Slug:  asNonEmptyString(data["slug"]),

		Category:      asString(data["category"]),
		CategoryID:    asNonEmptyString(data["categoryId"]),
		CategoryName:  asNonEmptyString(data["categoryName"]),
		Organizer:     asString(data["organizer"]),
		OrganizerID:   asNonEmptyString(data["organizerId"]),
		OrganizerName: asNonEmptyString(data["organizerName"]),
		OrganizerLogo: asNonEmptyString(data["organizerLogo"]),

		GradeEligibility: asString(data["gradeEligibility"]),
		EligibilityType:  eligibilityType,
		AgeEligibility:   asNonEmptyString(data["ageEligibility"]),
		Mode:             mode,
		State:            state,
		Status:           asNonEmptyString(data["status"]),

		StartDate:               toIsoString(data["startDate"]),
		EndDate:                 toIsoString(data["endDate"]),
		RegistrationDeadline:    toIsoString(data["registrationDeadline"]),
		StartDateTBD:            asBool(data["startDateTBD"]),
		EndDateTBD:              asBool(data["endDateTBD"]),
		RegistrationDeadlineTBD: asBool(data["registrationDeadlineTBD"]),

		Fee:         asNonEmptyString(data["fee"]),
		Currency:    "INR",
		Image:       asNonEmptyString(data["image"]),
		Description: description,

		Eligibility:         normalizeArray(data["eligibility"]),
		Benefits:            normalizeArray(data["benefits"]),
		Timeline:            mapTimeline(data["timeline"]),
		RegistrationProcess: normalizeArray(data["registrationProcess"]),
		ExamPattern:         mapExamPattern(data["examPattern"]),
		ExamPatterns:        mapExamPatterns(data["examPatterns"]),
		ContactInfo:         mapContactInfo(data["contactInfo"]),
		Resources:           mapResources(data["resources"]),
		Segments:            normalizeArray(data["segments"]),
		SearchKeywords:      normalizeArray(data["searchKeywords"]),
		CustomTabs:          mapCustomTabs(data["customTabs"]),

		ApplicationURL:    strings.TrimSpace(asString(data["applicationUrl"])),
		RegistrationMode:  registrationMode,
		RegistrationCount: registrationCount,
		Views:             views,

		TargetAudience:    targetAudience,
		ParticipationType: participationType,
		MinTeamSize:       toInt(data["minTeamSize"]),
		MaxTeamSize:       toInt(data["maxTeamSize"]),
	}
}
