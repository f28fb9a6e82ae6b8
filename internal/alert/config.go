package alert

// Event types a webhook can subscribe to.
const (
	EventRiskRed             = "risk_red"
	EventLicenseInvalid      = "license_invalid"
	EventLicenseUnverifiable = "license_unverifiable"
	EventOfficerNonCompliant = "officer_non_compliant"
	EventTeamNonCompliant    = "team_non_compliant"
	EventVenueHigh           = "venue_high"
	EventVenueCritical       = "venue_critical"
)

// AlertConfig defines a webhook alert destination.
type AlertConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["risk_red", "venue_critical", ...]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// AlertEvent is the payload sent to webhook endpoints.
type AlertEvent struct {
	Timestamp   string   `json:"timestamp"`
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Subject     string   `json:"subject"`
	Outcome     string   `json:"outcome"`
	Severity    string   `json:"severity"` // "info", "warning", "error", "critical"
	Summary     string   `json:"summary"`
	Details     []string `json:"details,omitempty"`
	CatalogHash string   `json:"catalog_hash"`
}
