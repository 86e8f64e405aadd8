package models

// OpportunityMode describes how an opportunity is conducted.
type OpportunityMode string

const (
	ModeOnline  OpportunityMode = "online"
	ModeOffline OpportunityMode = "offline"
	ModeHybrid  OpportunityMode = "hybrid"
)

// RegistrationMode distinguishes in-platform registration from an external form.
type RegistrationMode string

const (
	RegistrationInternal RegistrationMode = "internal"
	RegistrationExternal RegistrationMode = "external"
)

// TimelineEvent is a single dated milestone on an opportunity's timeline.
type TimelineEvent struct {
	Date   string `json:"date"`
	Event  string `json:"event"`
	Status string `json:"status"` // completed, active, upcoming
}

// ExamSection is one section of an exam pattern.
type ExamSection struct {
	Name      string `json:"name"`
	Questions *int   `json:"questions,omitempty"`
	Marks     *int   `json:"marks,omitempty"`
}

// ExamPattern describes the structure of an exam-based opportunity.
type ExamPattern struct {
	TotalQuestions           *int          `json:"totalQuestions,omitempty"`
	DurationMinutes          *int          `json:"durationMinutes,omitempty"`
	NegativeMarking          bool          `json:"negativeMarking"`
	NegativeMarksPerQuestion *float64      `json:"negativeMarksPerQuestion,omitempty"`
	Sections                 []ExamSection `json:"sections"`
}

// ClassSelection scopes an exam pattern block to one or more class grades.
type ClassSelection struct {
	Type            string   `json:"type"` // single, multiple, range
	SelectedClasses []string `json:"selectedClasses"`
	RangeStart      string   `json:"rangeStart,omitempty"`
	RangeEnd        string   `json:"rangeEnd,omitempty"`
}

// ExamPatternBlock is an exam pattern bound to a class selection.
type ExamPatternBlock struct {
	ExamPattern
	ID             string         `json:"id"`
	ClassSelection ClassSelection `json:"classSelection"`
}

// ContactInfo holds organizer contact details for an opportunity.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Resource is a downloadable or linked study material.
type Resource struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Type        string `json:"type"` // pdf, video, link
	Description string `json:"description,omitempty"`
}

// CustomTab is an admin-authored extra content tab on the detail page.
type CustomTab struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Order    int    `json:"order"`
	Required bool   `json:"required"`
	Content  any    `json:"content,omitempty"`
}

// Opportunity is the canonical listing entity: a scholarship, competition,
// exam or event surfaced to students. Raw store documents are loosely typed;
// every instance of this struct has passed through the mapping layer, so list
// fields are never nil and enum-ish strings hold known values or are empty.
type Opportunity struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`

	Category      string `json:"category"`
	CategoryID    string `json:"categoryId,omitempty"`
	CategoryName  string `json:"categoryName,omitempty"`
	Organizer     string `json:"organizer"`
	OrganizerID   string `json:"organizerId,omitempty"`
	OrganizerName string `json:"organizerName,omitempty"`
	OrganizerLogo string `json:"organizerLogo,omitempty"`

	GradeEligibility string          `json:"gradeEligibility"`
	EligibilityType  string          `json:"eligibilityType,omitempty"` // grade, age, both
	AgeEligibility   string          `json:"ageEligibility,omitempty"`
	Mode             OpportunityMode `json:"mode"`
	State            string          `json:"state,omitempty"`
	Status           string          `json:"status,omitempty"`

	StartDate               string `json:"startDate,omitempty"`
	EndDate                 string `json:"endDate,omitempty"`
	RegistrationDeadline    string `json:"registrationDeadline,omitempty"`
	StartDateTBD            bool   `json:"startDateTBD"`
	EndDateTBD              bool   `json:"endDateTBD"`
	RegistrationDeadlineTBD bool   `json:"registrationDeadlineTBD"`

	Fee         string `json:"fee,omitempty"`
	Currency    string `json:"currency"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`

	Eligibility         []string           `json:"eligibility"`
	Benefits            []string           `json:"benefits"`
	Timeline            []TimelineEvent    `json:"timeline"`
	RegistrationProcess []string           `json:"registrationProcess"`
	ExamPattern         *ExamPattern       `json:"examPattern,omitempty"`
	ExamPatterns        []ExamPatternBlock `json:"examPatterns"`
	ContactInfo         *ContactInfo       `json:"contactInfo,omitempty"`
	Resources           []Resource         `json:"resources"`
	Segments            []string           `json:"segments"`
	SearchKeywords      []string           `json:"searchKeywords"`
	CustomTabs          []CustomTab        `json:"customTabs"`

	ApplicationURL    string           `json:"applicationUrl,omitempty"`
	RegistrationMode  RegistrationMode `json:"registrationMode"`
	RegistrationCount int              `json:"registrationCount"`
	Views             int              `json:"views"`

	TargetAudience    string `json:"targetAudience,omitempty"`    // students, schools, both
	ParticipationType string `json:"participationType,omitempty"` // individual, team
	MinTeamSize       *int   `json:"minTeamSize,omitempty"`
	MaxTeamSize       *int   `json:"maxTeamSize,omitempty"`
}

// Category is a lightweight reference document used for enrichment and nav.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Organizer is a lightweight reference document contributing a display name
// and logo to opportunities.
type Organizer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
}
