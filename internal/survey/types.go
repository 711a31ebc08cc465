package survey

import "time"

// InputKind identifies the widget family of a question. The set is closed;
// classification always lands on exactly one of these.
type InputKind string

const (
	KindText     InputKind = "text"
	KindEmail    InputKind = "email"
	KindNumber   InputKind = "number"
	KindTextarea InputKind = "textarea"
	KindRadio    InputKind = "radio"
	KindCheckbox InputKind = "checkbox"
	KindDropdown InputKind = "dropdown"
	KindDate     InputKind = "date"
	KindVAS      InputKind = "vas"
	KindNRS      InputKind = "nrs"
	KindUnknown  InputKind = "unknown"
)

// SurveyIdentity identifies which instrument, locale and version a run targets.
// It is created once per run from CLI input and never changes.
type SurveyIdentity struct {
	CustomerID  string `json:"customerId"`
	StudyID     string `json:"studyId"`
	PackageName string `json:"packageName"`
	Language    string `json:"language"`
	Version     string `json:"version"`
}

// ConditionalInfo records how a dynamically revealed field came to exist.
type ConditionalInfo struct {
	IsConditional  bool   `json:"isConditional"`
	ParentQuestion string `json:"parentQuestion"`
	ParentValue    string `json:"parentValue"`
	AppearedAfter  string `json:"appearedAfter"`
}

// FieldDescriptor is the snapshot of one question taken at extraction time.
// Selector and ContainerSelector are always scoped to the survey root, never
// to the document. After creation only TestData and ScreenshotPath are attached.
type FieldDescriptor struct {
	QuestionNumber    string           `json:"questionNumber"`
	QuestionText      string           `json:"questionText"`
	InputType         InputKind        `json:"inputType"`
	IsRequired        bool             `json:"isRequired"`
	Choices           []string         `json:"choices,omitempty"`
	Selector          string           `json:"selector"`
	ContainerSelector string           `json:"containerSelector"`
	Conditional       *ConditionalInfo `json:"conditionalInfo,omitempty"`
	TestData          []TestCase       `json:"testData,omitempty"`
	ScreenshotPath    string           `json:"screenshotPath,omitempty"`
}

// TestCaseType classifies the intent of a synthesized value.
type TestCaseType string

const (
	CaseValid    TestCaseType = "valid"
	CaseBoundary TestCaseType = "boundary"
	CaseEdge     TestCaseType = "edge"
	CaseInvalid  TestCaseType = "invalid"
)

// TestCaseStatus tracks the review lifecycle of a case. The traversal only
// ever creates draft cases; status transitions happen in a review workflow
// outside this tool.
type TestCaseStatus string

const (
	StatusDraft       TestCaseStatus = "draft"
	StatusApproved    TestCaseStatus = "approved"
	StatusRejected    TestCaseStatus = "rejected"
	StatusNeedsReview TestCaseStatus = "needs_review"
)

// TestCaseQuality carries confidence metadata attached by the synthesizer.
type TestCaseQuality struct {
	Confidence  float64 `json:"confidence"`
	ReviewCount int     `json:"reviewCount"`
}

// TestCase is one candidate answer for a field. Immutable once created except
// for Status and Quality, which a later review pass may update.
type TestCase struct {
	ID          string          `json:"id"`
	Type        TestCaseType    `json:"type"`
	Value       any             `json:"value"`
	Description string          `json:"description"`
	Source      string          `json:"source"` // generated, human, hybrid
	Status      TestCaseStatus  `json:"status"`
	Provenance  string          `json:"provenance"`
	Quality     TestCaseQuality `json:"quality"`
}

// NavButtonType classifies a navigation control.
type NavButtonType string

const (
	NavNext     NavButtonType = "next"
	NavPrevious NavButtonType = "previous"
	NavFinish   NavButtonType = "finish"
)

// NavigationButton is recomputed fresh on every navigation query and never
// cached across page transitions.
type NavigationButton struct {
	Type      NavButtonType `json:"type"`
	Text      string        `json:"text"`
	Selector  string        `json:"selector"`
	IsEnabled bool          `json:"isEnabled"`
}

// FormPage is the record of one visited survey page, appended in visitation
// order and never revisited or merged.
type FormPage struct {
	LongTitle         string             `json:"longTitle"`
	ShortName         string             `json:"shortName"`
	Fields            []FieldDescriptor  `json:"fields"`
	NavigationButtons []NavigationButton `json:"navigationButtons"`
	OnEntryScreenshot string             `json:"onEntryScreenshot,omitempty"`
	OnExitScreenshot  string             `json:"onExitScreenshot,omitempty"`
	FormIndex         int                `json:"formIndex"`
}

// SurveyReport is the terminal artifact of a traversal. Write once, then
// handed whole to the persistence layer.
type SurveyReport struct {
	Identity     SurveyIdentity `json:"identity"`
	AnalysisDate time.Time      `json:"analysisDate"`
	URL          string         `json:"url"`
	Pages        []FormPage     `json:"pages"`
}

// QuestionCount returns the total number of fields recorded across all pages.
func (r *SurveyReport) QuestionCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Fields)
	}
	return n
}
