package outcome

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/tickwright/tickctl/pkg/llmchild"
)

// notePattern matches the child's self-reported completion line; its
// capture group is used verbatim as the note when present.
var notePattern = regexp.MustCompile(`(?m)^Session \S+#\d+ complete\.\s*(.*)$`)

type contentBlock struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
	ToolUseID string `json:"tool_use_id"`
	IsError   bool   `json:"is_error"`
}

type envelopeMessage struct {
	Content []contentBlock `json:"content"`
}

type assistantEnvelope struct {
	Message envelopeMessage `json:"message"`
}

type userEnvelope struct {
	Message envelopeMessage `json:"message"`
}

type resultEnvelope struct {
	CostUSD    float64 `json:"cost_usd"`
	DurationMS int64   `json:"duration_ms"`
}

// ExtractToolCalls walks the event stream pairing each assistant tool_use
// block with the user tool_result block carrying the same tool_use_id.
// Unpaired tool_use blocks are still counted but marked Paired=false.
func ExtractToolCalls(events []llmchild.Event) []ToolCall {
	pending := map[string]string{} // tool_use id -> name, in call order
	var order []string

	for _, ev := range events {
		if ev.Type != llmchild.EventAssistant {
			continue
		}
		var env assistantEnvelope
		if err := json.Unmarshal(ev.Raw, &env); err != nil {
			continue
		}
		for _, block := range env.Message.Content {
			if block.Type == "tool_use" {
				pending[block.ID] = block.Name
				order = append(order, block.ID)
			}
		}
	}

	resolved := map[string]bool{}
	for _, ev := range events {
		if ev.Type != llmchild.EventUser {
			continue
		}
		var env userEnvelope
		if err := json.Unmarshal(ev.Raw, &env); err != nil {
			continue
		}
		for _, block := range env.Message.Content {
			if block.Type == "tool_result" {
				resolved[block.ToolUseID] = !block.IsError
			}
		}
	}

	calls := make([]ToolCall, 0, len(order))
	for _, id := range order {
		success, paired := resolved[id]
		calls = append(calls, ToolCall{Name: pending[id], Success: success, Paired: paired})
	}
	return calls
}

// ExtractCost returns the cost reported by the stream's terminal result
// event, or zero if none is present.
func ExtractCost(events []llmchild.Event) float64 {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type != llmchild.EventResult {
			continue
		}
		var env resultEnvelope
		if err := json.Unmarshal(events[i].Raw, &env); err == nil {
			return env.CostUSD
		}
	}
	return 0
}

// ExtractNote finds the self-reported completion line ("Session
// Mode#n complete. <text>") across every assistant text block, falling
// back to the last non-empty text line when no such line exists.
func ExtractNote(events []llmchild.Event) string {
	var lines []string
	for _, ev := range events {
		if ev.Type != llmchild.EventAssistant {
			continue
		}
		var env assistantEnvelope
		if err := json.Unmarshal(ev.Raw, &env); err != nil {
			continue
		}
		for _, block := range env.Message.Content {
			if block.Type != "text" || block.Text == "" {
				continue
			}
			for _, l := range strings.Split(block.Text, "\n") {
				if strings.TrimSpace(l) != "" {
					lines = append(lines, l)
				}
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}

	joined := strings.Join(lines, "\n")
	if match := notePattern.FindStringSubmatch(joined); match != nil {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
