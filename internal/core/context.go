package core

import (
	"strings"
	"time"

	"medical-qa-service/pkg"
)

// timestampLayout matches the wall-clock format the downstream review tools
// already display.
const timestampLayout = "2006-01-02 15:04:05"

// FormatContext renders a member's context into the text block embedded in
// the system prompt. Rendering is deterministic: readings and chat turns
// appear exactly in input order, nothing is filtered or truncated, and a nil
// or empty context produces empty sections rather than an error.
func FormatContext(uc *pkg.UserContext) string {
	if uc == nil {
		uc = &pkg.UserContext{}
	}
	var b strings.Builder
	b.WriteString("Patient Information:\n")
	b.WriteString("- Age: " + uc.Profile.Age + "\n")
	b.WriteString("- Gender: " + uc.Profile.Gender + "\n")
	b.WriteString("- Medical History: " + strings.Join(uc.Profile.MedicalHistory, ", ") + "\n")
	b.WriteString("\nRecent Biometric Data:\n")
	b.WriteString(formatBiometrics(uc.Biometrics))
	b.WriteString("\n\nRecent Chat History:\n")
	b.WriteString(formatChatHistory(uc.ChatHistory))
	return b.String()
}

func formatBiometrics(readings []pkg.BiometricReading) string {
	lines := make([]string, 0, len(readings))
	for _, r := range readings {
		lines = append(lines, "- "+r.Type+": "+r.Value+" (recorded: "+formatTimestamp(r.Timestamp)+")")
	}
	return strings.Join(lines, "\n")
}

func formatChatHistory(history []pkg.ChatTurn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, "- "+string(turn.Role)+": "+turn.Content+" ("+formatTimestamp(turn.Timestamp)+")")
	}
	return strings.Join(lines, "\n")
}

func formatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
