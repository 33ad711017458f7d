package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"medical-qa-service/internal/core"
	"medical-qa-service/internal/llm"
	"medical-qa-service/pkg"
)

// scriptedClient implements llm.Client with per-call behavior so stream tests
// can make a specific question fail.
type scriptedClient struct {
	mu            sync.Mutex
	category      string
	completeCalls int
	failOnCall    int // 1-based; 0 means never fail
}

func (c *scriptedClient) Complete(ctx context.Context, messages []llm.Message) (llm.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completeCalls++
	if c.failOnCall != 0 && c.completeCalls == c.failOnCall {
		return llm.Completion{}, errors.New("provider unavailable")
	}
	return llm.Completion{
		Content:      "answer " + strconv.Itoa(c.completeCalls),
		FinishReason: "stop",
	}, nil
}

func (c *scriptedClient) Categorize(ctx context.Context, question string, categories []string) (string, error) {
	if c.category == "" {
		return "medical", nil
	}
	return c.category, nil
}

func newTestServer(client llm.Client) *httptest.Server {
	pipeline := core.NewPipeline(client, nil, map[pkg.QuestionCategory]string{
		pkg.CategoryTransport: "Routed to transportation.",
	})
	return httptest.NewServer(NewServer(pipeline, 4))
}

func postAnswer(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/v1/answers", "application/json", bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func TestGenerateDraftAnswer(t *testing.T) {
	ts := newTestServer(&scriptedClient{})
	defer ts.Close()

	resp := postAnswer(t, ts, `{"question_id":"q-1","question_text":"What are the symptoms of COVID-19?"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result pkg.AnswerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.QuestionID != "q-1" {
		t.Errorf("question id not echoed: %q", result.QuestionID)
	}
	if result.ConfidenceScore != 0.95 {
		t.Errorf("expected confidence 0.95, got %v", result.ConfidenceScore)
	}
}

func TestGenerateDraftAnswer_BadRequests(t *testing.T) {
	ts := newTestServer(&scriptedClient{})
	defer ts.Close()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"question_id":`},
		{"missing question id", `{"question_text":"hello"}`},
		{"empty question text", `{"question_id":"q-1","question_text":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postAnswer(t, ts, tt.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestGenerateDraftAnswer_ProviderFailureIsNotTransportFailure(t *testing.T) {
	ts := newTestServer(&scriptedClient{failOnCall: 1})
	defer ts.Close()

	resp := postAnswer(t, ts, `{"question_id":"q-9","question_text":"Is this serious?"}`)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("provider degradation must not surface as an HTTP error, got %d", resp.StatusCode)
	}
	var result pkg.AnswerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if result.QuestionID != "q-9" || result.DraftAnswer != "" || result.ConfidenceScore != 0.0 {
		t.Errorf("expected fail-soft empty result, got %+v", result)
	}
}

func dialChat(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing chat stream: %v", err)
	}
	return conn
}

func TestChatStream_OrderedResponses(t *testing.T) {
	// The second synthesis call fails; its response must still arrive in
	// position two as a fail-soft result, not dropped or reordered.
	ts := newTestServer(&scriptedClient{failOnCall: 2})
	defer ts.Close()

	conn := dialChat(t, ts)
	defer conn.Close()

	for i := 1; i <= 3; i++ {
		req := pkg.QuestionRequest{
			QuestionID:   "q-" + strconv.Itoa(i),
			QuestionText: "question " + strconv.Itoa(i),
		}
		if err := conn.WriteJSON(req); err != nil {
			t.Fatalf("sending question %d: %v", i, err)
		}
	}

	for i := 1; i <= 3; i++ {
		var result pkg.AnswerResult
		if err := conn.ReadJSON(&result); err != nil {
			t.Fatalf("reading response %d: %v", i, err)
		}
		wantID := "q-" + strconv.Itoa(i)
		if result.QuestionID != wantID {
			t.Fatalf("response %d out of order: got id %q, want %q", i, result.QuestionID, wantID)
		}
		if i == 2 {
			if result.DraftAnswer != "" || result.ConfidenceScore != 0.0 {
				t.Errorf("failed question should yield fail-soft result, got %+v", result)
			}
		} else if result.ConfidenceScore != 0.95 {
			t.Errorf("response %d: expected confidence 0.95, got %v", i, result.ConfidenceScore)
		}
	}
}

func TestChatStream_AssignsQuestionID(t *testing.T) {
	ts := newTestServer(&scriptedClient{})
	defer ts.Close()

	conn := dialChat(t, ts)
	defer conn.Close()

	if err := conn.WriteJSON(pkg.QuestionRequest{QuestionText: "hello doctor"}); err != nil {
		t.Fatalf("sending question: %v", err)
	}
	var result pkg.AnswerResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if result.QuestionID == "" {
		t.Error("stream handler should assign a question id when the request has none")
	}
}

func TestChatStream_SessionSurvivesMalformedFrame(t *testing.T) {
	ts := newTestServer(&scriptedClient{})
	defer ts.Close()

	conn := dialChat(t, ts)
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("sending malformed frame: %v", err)
	}
	var errResult pkg.AnswerResult
	if err := conn.ReadJSON(&errResult); err != nil {
		t.Fatalf("reading error response: %v", err)
	}
	if errResult.ConfidenceScore != 0.0 {
		t.Errorf("malformed frame should yield a zero-confidence result, got %+v", errResult)
	}

	// The session must still be open for the next question.
	if err := conn.WriteJSON(pkg.QuestionRequest{QuestionID: "q-after", QuestionText: "still there?"}); err != nil {
		t.Fatalf("sending follow-up question: %v", err)
	}
	var result pkg.AnswerResult
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("reading follow-up response: %v", err)
	}
	if result.QuestionID != "q-after" {
		t.Errorf("follow-up id not echoed: %q", result.QuestionID)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(&scriptedClient{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
