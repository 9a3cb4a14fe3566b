package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	td "github.com/maxatome/go-testdeep"

	"github.com/javiermolinar/huddle/internal/dateutil"
	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "raw json object",
			input:    `{"start": "x"}`,
			expected: `{"start": "x"}`,
		},
		{
			name:     "json with leading text",
			input:    `Sure: {"start": {"nested": true}} done`,
			expected: `{"start": {"nested": true}}`,
		},
		{
			name:     "json in code block",
			input:    "```json\n{\"start\": \"x\"}\n```",
			expected: `{"start": "x"}`,
		},
		{
			name:     "json in plain code block",
			input:    "```\n[1, 2]\n```",
			expected: `[1, 2]`,
		},
		{
			name:     "no json",
			input:    "no idea",
			expected: "no idea",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.expected {
				t.Errorf("extractJSON() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{2 * time.Hour, "2h"},
		{90 * time.Minute, "1h30m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// ============================================================================
// Advisor
// ============================================================================

type stubClient struct {
	answer   string
	answers  []string // consumed in order before answer
	err      error
	calls    int
	messages []Message
}

func (s *stubClient) Chat(_ context.Context, messages []Message) (string, error) {
	s.calls++
	s.messages = messages
	if len(s.answers) > 0 {
		next := s.answers[0]
		s.answers = s.answers[1:]
		return next, s.err
	}
	return s.answer, s.err
}

func (s *stubClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := s.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(extractJSON(content)), result)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, 1+day, hour, minute, 0, 0, time.UTC)
}

func advisorFixture(t *testing.T) (*poll.Poll, []*poll.Guest, []grid.Slot) {
	t.Helper()
	window := dateutil.DateRange{Start: at(0, 0, 0), End: at(2, 0, 0)}
	p, err := poll.New("Team sync", "ana", window, "09:00", "17:00", at(0, 8, 0))
	if err != nil {
		t.Fatalf("poll.New() error: %v", err)
	}
	guests := []*poll.Guest{{ID: "a", Name: "ana"}, {ID: "b", Name: "bo"}}
	ranked := []grid.Slot{
		{From: at(0, 10, 0), To: at(0, 11, 0), Weight: 2, Contributors: []string{"ana", "bo"}},
		{From: at(1, 9, 0), To: at(1, 9, 30), Weight: 2, Contributors: []string{"ana", "bo"}},
		{From: at(0, 13, 0), To: at(0, 15, 0), Weight: 1, Contributors: []string{"ana"}},
	}
	return p, guests, ranked
}

func TestAdvisor_Suggest(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	stub := &stubClient{answer: "```json\n{\"start\": \"2024-01-01T10:15\", \"end\": \"2024-01-01T11:00\", \"reason\": \"Everyone is free.\"}\n```"}

	got, err := NewAdvisor(stub).Suggest(context.Background(), p, guests, ranked, 45*time.Minute)
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	td.CmpDeeply(t, got, Suggestion{From: at(0, 10, 15), To: at(0, 11, 0), Weight: 2, Reason: "Everyone is free."})

	prompt := stub.messages[1].Content
	for _, want := range []string{"Guests (2): ana, bo", "Meeting length: 45m", "- Mon 2024-01-01 10:00-11:00 weight=2 (ana, bo)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q, got:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "09:00-09:30") {
		t.Error("expected slot shorter than the meeting to be left out of the prompt")
	}
}

func TestAdvisor_Suggest_Errors(t *testing.T) {
	p, guests, ranked := advisorFixture(t)

	tests := []struct {
		name    string
		answer  string
		length  time.Duration
		wantErr error
	}{
		{
			name:    "outside every candidate",
			answer:  `{"start": "2024-01-01T12:00", "end": "2024-01-01T13:00"}`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name:    "empty range",
			answer:  `{"start": "2024-01-01T10:00", "end": "2024-01-01T10:00"}`,
			wantErr: ErrInvalidSuggestion,
		},
		{
			name:    "shorter than the meeting",
			answer:  `{"start": "2024-01-01T10:00", "end": "2024-01-01T10:30"}`,
			length:  45 * time.Minute,
			wantErr: ErrWrongLength,
		},
		{
			name:    "nothing long enough",
			answer:  `{}`,
			length:  3 * time.Hour,
			wantErr: ErrNoCandidates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAdvisor(&stubClient{answer: tt.answer}).Suggest(context.Background(), p, guests, ranked, tt.length)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAdvisor_Suggest_ClientError(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	boom := errors.New("boom")

	_, err := NewAdvisor(&stubClient{err: boom}).Suggest(context.Background(), p, guests, ranked, 0)
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped client error, got %v", err)
	}
}

func TestAdvisor_Suggest_RFC3339(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	stub := &stubClient{answer: `{"start": "2024-01-01T14:00:00+01:00", "end": "2024-01-01T15:00:00+01:00", "reason": "ok"}`}

	got, err := NewAdvisor(stub).Suggest(context.Background(), p, guests, ranked, 0)
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	if !got.From.Equal(at(0, 13, 0)) || got.Weight != 1 {
		t.Errorf("unexpected suggestion %+v", got)
	}
}

func TestAdvisor_Suggest_RetriesWithFeedback(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	stub := &stubClient{answers: []string{
		`{"start": "2024-01-01T12:00", "end": "2024-01-01T13:00"}`,
		`{"start": "2024-01-01T10:00", "end": "2024-01-01T11:00", "reason": "fixed"}`,
	}}

	got, err := NewAdvisor(stub).Suggest(context.Background(), p, guests, ranked, time.Hour)
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	td.CmpDeeply(t, got, Suggestion{From: at(0, 10, 0), To: at(0, 11, 0), Weight: 2, Reason: "fixed"})
	td.CmpDeeply(t, stub.calls, 2)

	if len(stub.messages) != 4 {
		t.Fatalf("expected prompt, answer and feedback in the retry, got %d messages", len(stub.messages))
	}
	td.CmpDeeply(t, stub.messages[2].Role, "assistant")
	if fb := stub.messages[3].Content; !strings.Contains(fb, "invalid") || !strings.Contains(fb, "exactly 1h apart") {
		t.Errorf("unexpected feedback: %q", fb)
	}
}

func TestAdvisor_Suggest_RetriesWrongLength(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	stub := &stubClient{answers: []string{
		`{"start": "2024-01-01T13:00", "end": "2024-01-01T13:30"}`,
		`{"start": "2024-01-01T13:00", "end": "2024-01-01T14:00", "reason": "longer"}`,
	}}

	got, err := NewAdvisor(stub).Suggest(context.Background(), p, guests, ranked, time.Hour)
	if err != nil {
		t.Fatalf("Suggest() error: %v", err)
	}
	td.CmpDeeply(t, got, Suggestion{From: at(0, 13, 0), To: at(0, 14, 0), Weight: 1, Reason: "longer"})
	if fb := stub.messages[3].Content; !strings.Contains(fb, "lasts 30m, want 1h") {
		t.Errorf("unexpected feedback: %q", fb)
	}
}

func TestAdvisor_Suggest_RetriesExhausted(t *testing.T) {
	p, guests, ranked := advisorFixture(t)
	stub := &stubClient{answer: `{"start": "2024-01-01T12:00", "end": "2024-01-01T13:00"}`}

	_, err := NewAdvisor(stub).WithRetries(1).Suggest(context.Background(), p, guests, ranked, 0)
	if !errors.Is(err, ErrRetriesExhausted) || !errors.Is(err, ErrInvalidSuggestion) {
		t.Errorf("expected exhausted invalid suggestion, got %v", err)
	}
	td.CmpDeeply(t, stub.calls, 2)

	stub = &stubClient{answer: `{"start": "2024-01-01T12:00", "end": "2024-01-01T13:00"}`}
	_, err = NewAdvisor(stub).WithRetries(0).Suggest(context.Background(), p, guests, ranked, 0)
	if !errors.Is(err, ErrInvalidSuggestion) || errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("expected plain invalid suggestion without retries, got %v", err)
	}
	td.CmpDeeply(t, stub.calls, 1)
}
