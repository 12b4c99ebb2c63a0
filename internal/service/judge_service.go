package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"codeduel/internal/model"
)

// JudgeService runs a submission against every case and aggregates the verdict
type JudgeService struct {
	judge             Judge
	defaultLanguageID int
}

// NewJudgeService creates a judge service over judge
func NewJudgeService(judge Judge, defaultLanguageID int) *JudgeService {
	return &JudgeService{
		judge:             judge,
		defaultLanguageID: defaultLanguageID,
	}
}

// Evaluate runs source against cases in order. It stops at the first
// compilation error since every later case would fail the same way.
func (s *JudgeService) Evaluate(ctx context.Context, source string, languageID int, cases []model.JudgeCase) (*model.SubmissionResult, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("source code is empty")
	}
	if len(cases) == 0 {
		return nil, ErrNoTestCases
	}
	if languageID <= 0 {
		languageID = s.defaultLanguageID
	}
	log.Printf("[Judge] Evaluating submission: language %d, %d cases", languageID, len(cases))

	out := &model.SubmissionResult{Results: make([]model.CaseResult, 0, len(cases))}
	allPassed := true
	anyPassed := false
	var errOutputs []string

	for _, tc := range cases {
		res, err := s.judge.Run(ctx, Judge0Request{
			SourceCode:     source,
			LanguageID:     languageID,
			Stdin:          tc.Stdin,
			ExpectedOutput: tc.ExpectedOutput,
		})
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		cr := model.CaseResult{
			Title:          tc.Title,
			ExpectedOutput: tc.ExpectedOutput,
		}
		if err != nil || res == nil || res.Status == nil {
			cr.Status = "Failed to get result from judge"
			if err != nil {
				cr.ErrorMessage = err.Error()
			}
			allPassed = false
			out.Results = append(out.Results, cr)
			continue
		}

		cr.ActualOutput = strings.TrimRight(deref(res.Stdout), "\r\n")
		cr.Status = res.Status.Description
		cr.JudgeStatusID = res.Status.ID
		cr.ErrorMessage = firstNonEmpty(deref(res.Stderr), deref(res.CompileOutput), deref(res.Message))
		cr.Time = deref(res.Time)
		if res.Memory != nil {
			cr.Memory = *res.Memory
		}

		if res.Status.ID == model.JudgeStatusAccepted {
			cr.Passed = strings.TrimSpace(cr.ActualOutput) == strings.TrimSpace(tc.ExpectedOutput)
		}
		if cr.Passed {
			anyPassed = true
		} else {
			allPassed = false
		}
		out.Results = append(out.Results, cr)

		if co := deref(res.CompileOutput); co != "" && out.CompilationOutput == "" {
			out.CompilationOutput = co
		}
		if res.Status.ID == model.JudgeStatusCompilationError {
			if out.CompilationOutput == "" {
				out.CompilationOutput = "Compilation failed."
			}
			break
		}
		if res.Status.ID > model.JudgeStatusCompilationError && res.Status.ID <= model.JudgeStatusInternalError {
			errOutputs = append(errOutputs, firstNonEmpty(deref(res.Stderr), res.Status.Description))
		}
	}
	out.ErrorOutput = strings.Join(errOutputs, "\n")

	switch {
	case out.CompilationOutput != "":
		out.OverallStatus = model.VerdictCompilationError
	case out.ErrorOutput != "" && !anyPassed:
		out.OverallStatus = model.VerdictRuntimeError
	case allPassed:
		out.OverallStatus = model.VerdictAllPassed
	case anyPassed:
		out.OverallStatus = model.VerdictSomeFailed
	default:
		out.OverallStatus = model.VerdictAllFailed
	}
	log.Printf("[Judge] Submission verdict: %s", out.OverallStatus)
	return out, nil
}

// CasesFor converts a problem's judge cases into judge input
func CasesFor(p *model.Problem) []model.JudgeCase {
	tcs := p.JudgeCases()
	cases := make([]model.JudgeCase, 0, len(tcs))
	for _, tc := range tcs {
		cases = append(cases, model.JudgeCase{
			Title:          tc.Title,
			Stdin:          tc.TestIn,
			ExpectedOutput: tc.TestOut,
		})
	}
	return cases
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
