package core

import (
	"context"

	"medical-qa-service/internal/llm"
	"medical-qa-service/pkg"
)

// Pipeline sequences triage and, for categories that warrant a draft, answer
// synthesis. It is stateless: everything it holds is read-only after
// construction, so one Pipeline safely serves all concurrent requests.
type Pipeline struct {
	classifier  *Classifier
	synthesizer *Synthesizer
	drafting    map[pkg.QuestionCategory]bool
	canned      map[pkg.QuestionCategory]string
}

// NewPipeline wires a pipeline from a provider client, the set of categories
// that should get a drafted answer, and the canned response text for the
// rest. An empty drafting set defaults to medical only.
func NewPipeline(client llm.Client, drafting []pkg.QuestionCategory, canned map[pkg.QuestionCategory]string) *Pipeline {
	if len(drafting) == 0 {
		drafting = []pkg.QuestionCategory{pkg.CategoryMedical}
	}
	draftSet := make(map[pkg.QuestionCategory]bool, len(drafting))
	for _, c := range drafting {
		draftSet[c] = true
	}
	if canned == nil {
		canned = map[pkg.QuestionCategory]string{}
	}
	return &Pipeline{
		classifier:  NewClassifier(client),
		synthesizer: NewSynthesizer(client),
		drafting:    draftSet,
		canned:      canned,
	}
}

// Handle runs one question through triage and, when the category requires it,
// synthesis. The request's question id is copied into the result on every
// branch, failure paths included. Non-drafting categories short-circuit with
// their canned response and never trigger a second provider call.
func (p *Pipeline) Handle(ctx context.Context, req pkg.QuestionRequest) pkg.AnswerResult {
	category := p.classifier.Classify(ctx, req.QuestionText)

	if p.drafting[category] {
		draft, confidence, refs := p.synthesizer.Synthesize(ctx, req.QuestionText, req.UserContext)
		return pkg.AnswerResult{
			QuestionID:      req.QuestionID,
			DraftAnswer:     draft,
			ConfidenceScore: confidence,
			References:      refs,
		}
	}

	return pkg.AnswerResult{
		QuestionID:      req.QuestionID,
		DraftAnswer:     p.canned[category],
		ConfidenceScore: 0.0,
		References:      nil,
	}
}
