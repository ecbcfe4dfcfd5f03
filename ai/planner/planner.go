// Package planner proposes calendar placements for a goal's steps. The
// primary implementation asks an LLM; a deterministic slot-filling
// fallback covers deployments without an AI provider.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/initio-ai/initio/ai/llm"
	"github.com/initio-ai/initio/server/service/scheduling"
)

// promptSlotCap bounds how many free slots are listed in the prompt so
// a wide-open calendar does not blow the context window.
const promptSlotCap = 20

const systemPrompt = `You are a scheduling assistant. You place the steps of a user's goal into their free calendar slots. Respond with JSON only, no prose.`

// LLMPlanner asks a chat model to place steps into slots.
type LLMPlanner struct {
	llm llm.Service
}

func NewLLMPlanner(service llm.Service) *LLMPlanner {
	return &LLMPlanner{llm: service}
}

// Plan renders the scheduling prompt, queries the model and parses its
// JSON answer. A structured {"reason": ...} answer becomes a
// PlanRejection, not an error.
func (p *LLMPlanner) Plan(ctx context.Context, req *scheduling.PlanRequest) ([]scheduling.PlanEntry, *scheduling.PlanRejection, error) {
	prompt := buildPrompt(req)
	content, err := p.llm.Chat(ctx, []llm.Message{
		llm.SystemPrompt(systemPrompt),
		llm.UserMessage(prompt),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("planner llm call: %w", err)
	}

	plan, rejection, err := ParseResponse(content)
	if err != nil {
		slog.Warn("planner returned unparsable response", "error", err, "content_length", len(content))
		return nil, nil, err
	}
	return plan, rejection, nil
}

func buildPrompt(req *scheduling.PlanRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The user wants to schedule the steps of goal %q.\n\n", req.Goal.Title)

	fmt.Fprintf(&b, "Steps (%d total):\n", len(req.Goal.Steps))
	for _, step := range req.Goal.Steps {
		hours := 0.0
		if step.EstimatedHours != nil {
			hours = *step.EstimatedHours
		}
		fmt.Fprintf(&b, "ID: %d, order %d. %s (%.1fh)\n", step.ID, step.Order, step.Title, hours)
	}

	b.WriteString("\nPlanning parameters:\n")
	fmt.Fprintf(&b, "- Start date: %s\n", req.StartDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Deadline: %s\n", req.Deadline.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Preferred times: %s\n", orAny(bucketList(req.Prefs.TimeBuckets)))
	fmt.Fprintf(&b, "- Preferred days: %s\n", orAny(dayList(req.Prefs.Days)))

	b.WriteString("\nExisting events (busy):\n")
	if len(req.Events) == 0 {
		b.WriteString("- none\n")
	}
	for _, event := range req.Events {
		when := "all day"
		if event.Time != nil {
			when = *event.Time
		}
		fmt.Fprintf(&b, "- %s at %s: %s\n", event.Date, when, event.Title)
	}

	b.WriteString("\nFree slots:\n")
	if len(req.Slots) == 0 {
		b.WriteString("- none found\n")
	}
	for i, slot := range req.Slots {
		if i == promptSlotCap {
			fmt.Fprintf(&b, "... and %d more slots\n", len(req.Slots)-promptSlotCap)
			break
		}
		fmt.Fprintf(&b, "- %s at %s (%d min)\n", slot.Date, slot.Time, slot.DurationMinutes)
	}

	b.WriteString(`
Rules:
1. Steps run in order: a step must not be planned before a lower-order step.
2. Spread steps evenly between start date and deadline, keep some buffer.
3. Never plan on top of an existing event.
4. A step longer than one slot may be split across sessions.

Return a JSON array with the schedule, using the REAL step IDs from the list above:
[
  {"step_id": <id>, "planned_date": "2025-11-15", "planned_time": "10:00"},
  ...
]

If the deadline cannot be met, return {"reason": "<explanation>"} instead.
`)
	return b.String()
}

func orAny(values []string) string {
	if len(values) == 0 {
		return "any"
	}
	return strings.Join(values, ", ")
}

func bucketList(buckets []scheduling.TimeBucket) []string {
	list := make([]string, len(buckets))
	for i, b := range buckets {
		list[i] = string(b)
	}
	return list
}

func dayList(days []time.Weekday) []string {
	list := make([]string, len(days))
	for i, d := range days {
		list[i] = d.String()
	}
	return list
}

type wireEntry struct {
	StepID      int32  `json:"step_id"`
	PlannedDate string `json:"planned_date"`
	PlannedTime string `json:"planned_time,omitempty"`
}

type wireRejection struct {
	Reason string `json:"reason"`
}

// ParseResponse decodes the model's answer: either a JSON array of
// placements or an object carrying a rejection reason. Markdown fences
// around the JSON are tolerated.
func ParseResponse(content string) ([]scheduling.PlanEntry, *scheduling.PlanRejection, error) {
	content = stripFences(content)
	if content == "" {
		return nil, nil, fmt.Errorf("empty planner response")
	}

	switch content[0] {
	case '[':
		var entries []wireEntry
		if err := json.Unmarshal([]byte(content), &entries); err != nil {
			return nil, nil, fmt.Errorf("decode planner array: %w", err)
		}
		if len(entries) == 0 {
			return nil, &scheduling.PlanRejection{Reason: "planner returned an empty schedule"}, nil
		}
		plan := make([]scheduling.PlanEntry, 0, len(entries))
		for _, entry := range entries {
			if entry.StepID == 0 || entry.PlannedDate == "" {
				return nil, nil, fmt.Errorf("planner entry missing step_id or planned_date")
			}
			if _, err := time.Parse("2006-01-02", entry.PlannedDate); err != nil {
				return nil, nil, fmt.Errorf("planner entry has invalid date %q", entry.PlannedDate)
			}
			plan = append(plan, scheduling.PlanEntry{
				StepID:      entry.StepID,
				PlannedDate: entry.PlannedDate,
				PlannedTime: entry.PlannedTime,
			})
		}
		return plan, nil, nil
	case '{':
		var rejection wireRejection
		if err := json.Unmarshal([]byte(content), &rejection); err != nil {
			return nil, nil, fmt.Errorf("decode planner rejection: %w", err)
		}
		if rejection.Reason == "" {
			return nil, nil, fmt.Errorf("planner object has no reason field")
		}
		return nil, &scheduling.PlanRejection{Reason: rejection.Reason}, nil
	default:
		return nil, nil, fmt.Errorf("planner response is not JSON")
	}
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx >= 0 {
			content = content[:idx]
		}
		content = strings.TrimSpace(content)
	}
	return content
}
