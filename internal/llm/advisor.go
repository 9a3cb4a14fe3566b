package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

// Advisor errors.
var (
	ErrNoCandidates      = errors.New("no candidate slots to choose from")
	ErrInvalidSuggestion = errors.New("suggestion is outside the offered slots")
	ErrWrongLength       = errors.New("suggestion does not match the meeting length")
	ErrRetriesExhausted  = errors.New("no valid suggestion after retries")
)

// MaxCandidates caps the slots sent to the model.
const MaxCandidates = 20

// DefaultRetries is how many times an invalid answer is sent back with
// feedback before giving up.
const DefaultRetries = 2

const advisorSystemPrompt = `You pick meeting times for small groups. Answer with JSON only.`

const advisorPromptTemplate = `Poll: %s
Time zone: %s
Allowed hours: %s-%s
Guests (%d): %s
Meeting length: %s

Candidate slots, best first (weight = guests available):
%s
Pick ONE start time inside a candidate slot so that the meeting fits in that slot.
Prefer more guests, then earlier in the day, then earlier dates.

Respond ONLY with JSON:
{"start": "YYYY-MM-DDTHH:MM", "end": "YYYY-MM-DDTHH:MM", "reason": "one short sentence"}`

// Suggestion is the advisor's recommended meeting range.
type Suggestion struct {
	From   time.Time
	To     time.Time
	Weight int
	Reason string
}

type suggestionResponse struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// Advisor asks a model to choose a meeting time among ranked slots.
type Advisor struct {
	client  Client
	retries int
}

// NewAdvisor creates a new Advisor with the given LLM client.
func NewAdvisor(client Client) *Advisor {
	return &Advisor{client: client, retries: DefaultRetries}
}

// WithRetries sets how many corrective rounds Suggest may take.
func (a *Advisor) WithRetries(n int) *Advisor {
	a.retries = max(n, 0)
	return a
}

// Suggest sends the ranked candidates to the model and validates its pick:
// the answer must lie entirely inside one candidate. length is the wanted
// meeting length; zero means any.
func (a *Advisor) Suggest(ctx context.Context, p *poll.Poll, guests []*poll.Guest, ranked []grid.Slot, length time.Duration) (Suggestion, error) {
	candidates := fitting(ranked, length)
	if len(candidates) == 0 {
		return Suggestion{}, ErrNoCandidates
	}
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}

	loc, err := p.Location()
	if err != nil {
		return Suggestion{}, err
	}

	messages := []Message{
		{Role: "system", Content: advisorSystemPrompt},
		{Role: "user", Content: buildPrompt(p, guests, candidates, length)},
	}

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		var resp suggestionResponse
		if err := a.client.ChatJSON(ctx, messages, &resp); err != nil {
			return Suggestion{}, fmt.Errorf("asking for a suggestion (attempt %d): %w", attempt+1, err)
		}

		s, err := resp.toSuggestion(loc, candidates, length)
		if err == nil {
			return s, nil
		}
		if a.retries == 0 {
			return Suggestion{}, err
		}
		lastErr = err

		// Send the answer back with what was wrong about it.
		answer, err := json.Marshal(resp)
		if err != nil {
			return Suggestion{}, fmt.Errorf("encoding answer for feedback: %w", err)
		}
		messages = append(messages,
			Message{Role: "assistant", Content: string(answer)},
			Message{Role: "user", Content: feedback(err, length)},
		)
	}
	return Suggestion{}, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr)
}

func feedback(err error, length time.Duration) string {
	msg := fmt.Sprintf("That answer is invalid: %v.\nPick a start and end inside ONE of the candidate slots", err)
	if length > 0 {
		msg += fmt.Sprintf(", exactly %s apart", formatDuration(length))
	}
	return msg + ". Respond with the JSON object only."
}

func (r suggestionResponse) toSuggestion(loc *time.Location, candidates []grid.Slot, length time.Duration) (Suggestion, error) {
	from, err := parseSuggestionTime(r.Start, loc)
	if err != nil {
		return Suggestion{}, fmt.Errorf("start: %w", err)
	}
	to, err := parseSuggestionTime(r.End, loc)
	if err != nil {
		return Suggestion{}, fmt.Errorf("end: %w", err)
	}
	if !from.Before(to) {
		return Suggestion{}, fmt.Errorf("%w: %s-%s is empty", ErrInvalidSuggestion, r.Start, r.End)
	}
	if length > 0 && to.Sub(from) != length {
		return Suggestion{}, fmt.Errorf("%w: %s-%s lasts %s, want %s", ErrWrongLength,
			r.Start, r.End, formatDuration(to.Sub(from)), formatDuration(length))
	}

	for _, s := range candidates {
		if !from.Before(s.From) && !to.After(s.To) {
			return Suggestion{From: from, To: to, Weight: s.Weight, Reason: strings.TrimSpace(r.Reason)}, nil
		}
	}
	return Suggestion{}, fmt.Errorf("%w: %s-%s", ErrInvalidSuggestion, r.Start, r.End)
}

func parseSuggestionTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02T15:04", s, loc)
}

// fitting keeps the slots at least length long, preserving order.
func fitting(slots []grid.Slot, length time.Duration) []grid.Slot {
	var out []grid.Slot
	for _, s := range slots {
		if s.Duration() >= length {
			out = append(out, s)
		}
	}
	return out
}

func buildPrompt(p *poll.Poll, guests []*poll.Guest, candidates []grid.Slot, length time.Duration) string {
	names := make([]string, len(guests))
	for i, g := range guests {
		names[i] = g.Name
	}

	var sb strings.Builder
	for _, s := range candidates {
		fmt.Fprintf(&sb, "- %s %s-%s weight=%d", s.From.Format("Mon 2006-01-02"), s.From.Format("15:04"), s.To.Format("15:04"), s.Weight)
		if len(s.Contributors) > 0 {
			fmt.Fprintf(&sb, " (%s)", strings.Join(s.Contributors, ", "))
		}
		sb.WriteString("\n")
	}

	meeting := "any"
	if length > 0 {
		meeting = formatDuration(length)
	}

	return fmt.Sprintf(advisorPromptTemplate,
		p.Title, p.TimeZone, p.DayStart, p.DayEnd,
		len(guests), strings.Join(names, ", "),
		meeting, sb.String())
}

// formatDuration formats d as "1h30m", "45m" or "2h".
func formatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
}
