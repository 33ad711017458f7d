package core

import (
	"context"
	"log"
	"strings"

	"medical-qa-service/internal/llm"
	"medical-qa-service/pkg"
)

// referencePrefixes mark a line as a citation. Matching is case-sensitive
// against the trimmed line.
var referencePrefixes = []string{"ref:", "reference:", "[", "1.", "2."}

// Synthesizer drives the provider call for the medical-answer path and turns
// the completion into a draft, confidence score, and reference list.
type Synthesizer struct {
	LLM llm.Client
}

// NewSynthesizer constructs a Synthesizer with the given provider client.
func NewSynthesizer(client llm.Client) *Synthesizer {
	return &Synthesizer{LLM: client}
}

// Synthesize generates a draft answer for the question grounded in the
// member context. The confidence score is a completion-health signal, not a
// semantic measure: 0.95 when the provider finished normally ("stop"), 0.5
// for any other finish reason. On provider failure it returns an empty draft
// with confidence 0.0 and no references; errors are logged, never returned,
// so callers always get a well-formed result.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, uc *pkg.UserContext) (string, float64, []string) {
	messages := BuildMessages(question, uc)

	completion, err := s.LLM.Complete(ctx, messages)
	if err != nil {
		log.Printf("ERROR draft synthesis failed: %v", err)
		return "", 0.0, nil
	}

	confidence := 0.5
	if completion.FinishReason == "stop" {
		confidence = 0.95
	}
	return completion.Content, confidence, ExtractReferences(completion.Content)
}

// ExtractReferences scans the answer line by line and collects trimmed lines
// that start with a reference prefix, preserving input order.
func ExtractReferences(answer string) []string {
	var refs []string
	for _, line := range strings.Split(answer, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, prefix := range referencePrefixes {
			if strings.HasPrefix(trimmed, prefix) {
				refs = append(refs, trimmed)
				break
			}
		}
	}
	return refs
}
