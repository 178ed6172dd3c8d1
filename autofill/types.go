package autofill

// Command actions.
const (
	ActionAutofill = "autofill"
	ActionScan     = "scan"
)

// Command is one instruction to the agent.
type Command struct {
	Action    string `json:"action"`
	ProfileID string `json:"profile_id,omitempty"`

	// Data holds one-off values overlaid on the profile for this invocation
	// only. Canonical attribute keys replace the profile's values; unknown
	// keys join the custom fields.
	Data map[string]string `json:"data,omitempty"`
}

// Report summarises one completed invocation.
type Report struct {
	FilledCount int           `json:"filled_count"`
	FieldCount  int           `json:"field_count"`
	MatchCount  int           `json:"match_count"`
	Message     string        `json:"message"`
	Fields      []FieldReport `json:"fields,omitempty"`
}

// FieldReport describes one matched field in a scan or fill.
type FieldReport struct {
	DataKey    string  `json:"data_key"`
	Kind       string  `json:"kind"`
	Strategy   string  `json:"strategy"`
	Confidence float64 `json:"confidence"`
	Filled     bool    `json:"filled,omitempty"`
	FinalValue string  `json:"final_value,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Severity grades a page notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)
