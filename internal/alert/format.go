package alert

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event AlertEvent) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return formatGeneric(event)
	}
}

func formatGeneric(event AlertEvent) ([]byte, error) {
	return json.Marshal(event)
}

func formatSlack(event AlertEvent) ([]byte, error) {
	blocks := []any{
		map[string]any{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("protectwatch: %s", event.Type),
			},
		},
		map[string]any{
			"type": "section",
			"fields": []any{
				map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Subject:* %s", event.Subject)},
				map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Outcome:* %s", event.Outcome)},
				map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Severity:* %s", event.Severity)},
				map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Summary:* %s", event.Summary)},
			},
		},
	}
	if len(event.Details) > 0 {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": "• " + strings.Join(event.Details, "\n• "),
			},
		})
	}
	return json.Marshal(map[string]any{"blocks": blocks})
}

func formatPagerDuty(event AlertEvent) ([]byte, error) {
	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("protectwatch %s: %s", event.Type, event.Subject),
			"severity": pagerDutySeverity(event.Severity),
			"source":   "protectwatch",
			"custom_details": map[string]any{
				"id":           event.ID,
				"outcome":      event.Outcome,
				"summary":      event.Summary,
				"details":      event.Details,
				"catalog_hash": event.CatalogHash,
			},
		},
	}
	return json.Marshal(payload)
}

// pagerDutySeverity maps to the four severities PagerDuty accepts.
func pagerDutySeverity(s string) string {
	switch s {
	case "critical", "error", "warning":
		return s
	default:
		return "info"
	}
}
