package pkg

import "time"

// Role identifies who authored a chat turn. Only two roles exist: the
// member asking questions and the assistant answering them.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// UserProfile is a snapshot of member demographics supplied with a request.
// Age is a string because upstream systems report it both as a number and as
// ranges like "65+".
type UserProfile struct {
	Age            string   `json:"age"`
	Gender         string   `json:"gender"`
	MedicalHistory []string `json:"medical_history"`
}

// BiometricReading is a single recorded measurement, e.g. a blood pressure
// reading. Ordering by timestamp is the caller's responsibility.
type BiometricReading struct {
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatTurn is one message of the prior exchange between member and assistant.
type ChatTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserContext aggregates everything known about the member at question time.
// It is constructed by the caller per request and only ever read here.
type UserContext struct {
	Profile     UserProfile        `json:"user_info"`
	Biometrics  []BiometricReading `json:"biometric_data"`
	ChatHistory []ChatTurn         `json:"chat_history"`
}

// QuestionRequest is an inbound question. QuestionID is caller-assigned and
// opaque; it is echoed back unchanged on every response, including failures.
type QuestionRequest struct {
	QuestionID   string       `json:"question_id"`
	QuestionText string       `json:"question_text"`
	UserContext  *UserContext `json:"user_context,omitempty"`
}

// QuestionCategory is the closed set of operational categories a question can
// be triaged into.
type QuestionCategory string

const (
	CategoryMedical    QuestionCategory = "medical"
	CategorySchedule   QuestionCategory = "schedule"
	CategoryTransport  QuestionCategory = "transport"
	CategoryPaceCenter QuestionCategory = "pace_center"

	// CategoryTaxonomy is not a business category: it signals that the
	// question could not be classified and needs human routing.
	CategoryTaxonomy QuestionCategory = "taxonomy"
)

// Categories lists every valid category, taxonomy included.
func Categories() []QuestionCategory {
	return []QuestionCategory{
		CategoryMedical,
		CategorySchedule,
		CategoryTransport,
		CategoryPaceCenter,
		CategoryTaxonomy,
	}
}

// ParseCategory maps a raw string onto a category. The second return value
// reports whether the string names a known category.
func ParseCategory(s string) (QuestionCategory, bool) {
	for _, c := range Categories() {
		if s == string(c) {
			return c, true
		}
	}
	return CategoryTaxonomy, false
}

// AnswerResult is the response for a question. ConfidenceScore takes exactly
// three values: 0.95 (completion finished normally), 0.5 (truncated or
// otherwise abnormal completion) or 0.0 (no draft produced).
type AnswerResult struct {
	QuestionID      string   `json:"question_id"`
	DraftAnswer     string   `json:"draft_answer"`
	ConfidenceScore float64  `json:"confidence_score"`
	References      []string `json:"references"`
}
