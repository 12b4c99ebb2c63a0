package model

// Judge0 status ids the coordinator cares about
const (
	JudgeStatusAccepted         = 3
	JudgeStatusCompilationError = 6
	JudgeStatusInternalError    = 13
)

// Overall verdicts of a multi-case submission
const (
	VerdictCompilationError = "Compilation Error"
	VerdictRuntimeError     = "Runtime Error"
	VerdictAllPassed        = "All tests passed!"
	VerdictSomeFailed       = "Some tests failed"
	VerdictAllFailed        = "All tests failed"
	VerdictBlocked          = "Blocked"
	VerdictRejected         = "Rejected"
)

// JudgeCase is one stdin/expected-output pair sent to the judge
type JudgeCase struct {
	Title          string `json:"title"`
	Stdin          string `json:"stdin,omitempty"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
}

// SubmissionRequest is the body of POST /v1/judge/submit
type SubmissionRequest struct {
	SourceCode string      `json:"sourceCode"`
	LanguageID int         `json:"languageId"`
	TestCases  []JudgeCase `json:"testCases"`
}

// CaseResult is the outcome of a single test case
type CaseResult struct {
	Title          string `json:"title"`
	Passed         bool   `json:"passed"`
	ActualOutput   string `json:"actualOutput,omitempty"`
	ExpectedOutput string `json:"expectedOutput,omitempty"`
	Status         string `json:"status"`
	JudgeStatusID  int    `json:"judgeStatusId"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	Time           string `json:"time,omitempty"`
	Memory         int    `json:"memory,omitempty"`
}

// SubmissionResult aggregates every case of a submission
type SubmissionResult struct {
	Results           []CaseResult `json:"results"`
	OverallStatus     string       `json:"overallStatus"`
	CompilationOutput string       `json:"compilationOutput,omitempty"`
	ErrorOutput       string       `json:"errorOutput,omitempty"`
}

// AllPassed reports whether every case passed
func (r *SubmissionResult) AllPassed() bool {
	return r.OverallStatus == VerdictAllPassed
}
