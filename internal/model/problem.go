package model

// Fallback text for problems whose corpus entry leaves a field empty.
const (
	DefaultTitle             = "Untitled Problem"
	DefaultStatement         = "No statement provided."
	DefaultInputDescription  = "No input description."
	DefaultOutputDescription = "No output description."
	DefaultConstraints       = "No constraints."
)

// TestCase is one input/output pair of a problem
type TestCase struct {
	Title       string `json:"title" bson:"title"`
	IsTest      bool   `json:"isTest" bson:"isTest"`           // shown to players as an example
	IsValidator bool   `json:"isValidator" bson:"isValidator"` // hidden, used when judging
	TestIn      string `json:"testIn" bson:"testIn"`
	TestOut     string `json:"testOut" bson:"testOut"`
}

// Problem is a coding puzzle issued to a room during a rotation
type Problem struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty"`
	Title             string     `json:"title" bson:"title"`
	Statement         string     `json:"statement" bson:"statement"`
	InputDescription  string     `json:"inputDescription" bson:"inputDescription"`
	OutputDescription string     `json:"outputDescription" bson:"outputDescription"`
	Constraints       string     `json:"constraints,omitempty" bson:"constraints,omitempty"`
	TestCases         []TestCase `json:"testCases" bson:"testCases"`
}

// WithDefaults returns a copy with every empty text field replaced by its fallback
func (p Problem) WithDefaults() Problem {
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Statement == "" {
		p.Statement = DefaultStatement
	}
	if p.InputDescription == "" {
		p.InputDescription = DefaultInputDescription
	}
	if p.OutputDescription == "" {
		p.OutputDescription = DefaultOutputDescription
	}
	if p.Constraints == "" {
		p.Constraints = DefaultConstraints
	}
	if p.TestCases == nil {
		p.TestCases = []TestCase{}
	}
	return p
}

// JudgeCases returns the cases a submission is run against: validators plus examples.
func (p *Problem) JudgeCases() []TestCase {
	cases := make([]TestCase, 0, len(p.TestCases))
	for _, tc := range p.TestCases {
		if tc.IsTest || tc.IsValidator {
			cases = append(cases, tc)
		}
	}
	return cases
}
