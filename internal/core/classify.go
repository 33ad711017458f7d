package core

import (
	"context"
	"log"

	"medical-qa-service/internal/llm"
	"medical-qa-service/pkg"
)

// Classifier triages a free-text question into one operational category via
// a constrained provider call.
type Classifier struct {
	LLM llm.Client
}

// NewClassifier constructs a Classifier with the given provider client.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{LLM: client}
}

// Classify returns the category for a question. It never fails: any provider
// error, missing payload, or unknown category value degrades to
// CategoryTaxonomy, which downstream routing treats as "could not classify".
// Failures are logged with the question text for operator diagnosis.
func (c *Classifier) Classify(ctx context.Context, question string) pkg.QuestionCategory {
	names := make([]string, 0, len(pkg.Categories()))
	for _, cat := range pkg.Categories() {
		names = append(names, string(cat))
	}

	raw, err := c.LLM.Categorize(ctx, question, names)
	if err != nil {
		log.Printf("ERROR classification failed for question %q: %v", question, err)
		return pkg.CategoryTaxonomy
	}
	category, ok := pkg.ParseCategory(raw)
	if !ok {
		log.Printf("ERROR classifier returned unknown category %q for question %q", raw, question)
		return pkg.CategoryTaxonomy
	}
	return category
}
