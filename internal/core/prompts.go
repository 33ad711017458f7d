package core

import (
	"medical-qa-service/internal/llm"
	"medical-qa-service/pkg"
)

// prompts.go is the single place the instructional framing for the
// draft-answer call is defined. Changing the assistant's tone or scope policy
// means changing only this file.

const (
	// systemPromptHeader frames the assistant for drafting: it writes for
	// medical professionals to review, grounded in the member context that
	// follows.
	systemPromptHeader = "You are a medical AI assistant helping medical professionals such as " +
		"doctors, nurses, and caregiving professionals to draft answers for medical and " +
		"caregiving related questions. Please provide accurate medical information based on " +
		"the following patient context:"

	// systemPromptFooter closes the system message after the rendered context.
	systemPromptFooter = "Please provide a clear, professional response that a medical professional can review."

	// userPromptSuffix asks the model to cite its sources so the reference
	// extractor has something to find.
	userPromptSuffix = "Please provide a detailed medical response, including any relevant references."
)

// BuildMessages compiles the question and member context into the two-message
// conversation sent to the provider on the synthesis path. Pure composition,
// no network calls.
func BuildMessages(question string, uc *pkg.UserContext) []llm.Message {
	system := systemPromptHeader + "\n\n" + FormatContext(uc) + "\n\n" + systemPromptFooter
	user := "Question: " + question + "\n\n" + userPromptSuffix
	return []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}
