package evaluation

// Language identifies the kind of submission being evaluated.
type Language string

const (
	// LanguageCode is a Python function submission checked against test cases.
	LanguageCode Language = "code"
	// LanguageQuery is a SQL query submission checked against a reference query.
	LanguageQuery Language = "query"
	// LanguageChoice is a single-choice answer checked against the correct index.
	LanguageChoice Language = "choice"
)

// Submission carries the learner's answer for one question.
//
// Source holds the submitted code or query text for code/query submissions.
// Selected holds the raw option selection for choice submissions; it is kept
// as text so that malformed selections can be classified instead of dropped.
type Submission struct {
	Language Language
	Source   string
	Selected string
}

// TestCase describes a single invocation of the submitted callable.
type TestCase struct {
	Name     string `json:"name"`
	Input    []any  `json:"input_args"`
	Expected any    `json:"expected_output"`
}

// TestSpec is the instructor-defined fixture a submission is checked against.
// Exactly one of the per-language sections is populated, matching the
// submission language.
type TestSpec struct {
	// Cases is the ordered test-case sequence for code submissions.
	Cases []TestCase
	// Schema optionally seeds the in-sandbox database for query submissions.
	// An empty schema is legal and skips the seeding step.
	Schema string
	// ReferenceQuery is the instructor's query for query submissions.
	ReferenceQuery string
	// Options are the selectable answers for choice submissions.
	Options []string
	// CorrectIndex is the zero-based correct option for choice submissions.
	CorrectIndex int
}
