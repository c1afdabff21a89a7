package domain

import "time"

// Action names a user action reported on the activity feed.
type Action string

const (
	ActionSessionCreated Action = "session_created"
	ActionDataType       Action = "data_type"
	ActionWaterLevelType Action = "water_level_type"
	ActionLoad           Action = "load"
	ActionRiver          Action = "river"
	ActionStation        Action = "station"
	ActionYear           Action = "year"
	ActionComparison     Action = "comparison_years"
	ActionDateRange      Action = "date_range"
	ActionSedimentColumn Action = "sediment_column"
	ActionPlot           Action = "plot"
	ActionMap            Action = "map"
	ActionDownload       Action = "download"
	ActionSessionClosed  Action = "session_closed"
)

// OutcomeOK marks a successful action; failures carry their ErrorKind instead.
const OutcomeOK = "ok"

// ActivityEvent records one user action and the selection it left behind.
type ActivityEvent struct {
	SessionID  string    `json:"session_id"`
	Action     Action    `json:"action"`
	Selection  Selection `json:"selection"`
	Outcome    string    `json:"outcome"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewActivityEvent stamps an event with the package clock. A nil err is a
// success; otherwise the outcome is the error's category, or "error" when it
// has none.
func NewActivityEvent(sessionID string, action Action, sel Selection, err error) ActivityEvent {
	outcome := OutcomeOK
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	return ActivityEvent{
		SessionID:  sessionID,
		Action:     action,
		Selection:  sel,
		Outcome:    outcome,
		OccurredAt: Now(),
	}
}
