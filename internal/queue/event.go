// Package queue defines message payloads exchanged over the message broker.
package queue

// ActivityRemediatedEvent is published after an activity has been
// privatized and renamed. It carries enough information for downstream
// consumers to audit or notify without calling Strava again.
type ActivityRemediatedEvent struct {
    AthleteID    int64   `json:"athlete_id"`
    ActivityID   int64   `json:"activity_id"`
    ActivityType string  `json:"activity_type"`
    Distance     float64 `json:"distance"`
    OldName      string  `json:"old_name"`
    NewName      string  `json:"new_name"`
    Reason       string  `json:"reason"` // "workout" or "insignificant"
    RemediatedAt string  `json:"remediated_at"`
}
