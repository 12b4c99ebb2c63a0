package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"codeduel/internal/model"
)

// Placeholder descriptions of auto-generated reverse problems, which are unusable
const (
	reverseInputDescription  = "no input description (reverse)"
	reverseOutputDescription = "no output description (reverse)"
)

type corpusEntry struct {
	Title       string `json:"title"`
	LastVersion *struct {
		Data *corpusData `json:"data"`
	} `json:"lastVersion"`
}

type corpusData struct {
	Statement         string           `json:"statement"`
	InputDescription  string           `json:"inputDescription"`
	OutputDescription string           `json:"outputDescription"`
	Constraints       string           `json:"constraints"`
	TestCases         []corpusTestCase `json:"testCases"`
}

type corpusTestCase struct {
	Title       json.RawMessage `json:"title"` // string or number in the corpus
	IsTest      bool            `json:"isTest"`
	IsValidator bool            `json:"isValidator"`
	TestIn      string          `json:"testIn"`
	TestOut     string          `json:"testOut"`
}

// CorpusStats counts what ParseCorpus kept and dropped
type CorpusStats struct {
	Total   int
	Kept    int
	Reverse int
	Invalid int
}

// ParseCorpus decodes a problems.json document. Entries without
// lastVersion.data and reverse placeholder entries are dropped.
func ParseCorpus(data []byte) ([]*model.Problem, CorpusStats, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, CorpusStats{}, fmt.Errorf("problem corpus must be a JSON array: %w", err)
	}

	stats := CorpusStats{Total: len(entries)}
	problems := make([]*model.Problem, 0, len(entries))
	for _, raw := range entries {
		var e corpusEntry
		if err := json.Unmarshal(raw, &e); err != nil || e.LastVersion == nil || e.LastVersion.Data == nil {
			stats.Invalid++
			continue
		}
		d := e.LastVersion.Data
		if strings.EqualFold(d.InputDescription, reverseInputDescription) &&
			strings.EqualFold(d.OutputDescription, reverseOutputDescription) {
			stats.Reverse++
			continue
		}

		p := &model.Problem{
			Title:             e.Title,
			Statement:         d.Statement,
			InputDescription:  d.InputDescription,
			OutputDescription: d.OutputDescription,
			Constraints:       d.Constraints,
			TestCases:         make([]model.TestCase, 0, len(d.TestCases)),
		}
		for _, tc := range d.TestCases {
			p.TestCases = append(p.TestCases, model.TestCase{
				Title:       rawTitle(tc.Title),
				IsTest:      tc.IsTest,
				IsValidator: tc.IsValidator,
				TestIn:      tc.TestIn,
				TestOut:     tc.TestOut,
			})
		}
		problems = append(problems, p)
	}
	stats.Kept = len(problems)
	return problems, stats, nil
}

func rawTitle(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
