package model

// Activity mirrors the fields of a Strava activity summary that this
// service reads. Activities are never persisted; each sweep fetches them
// fresh from the API. Distance and speeds keep Strava's units (meters,
// meters/second).
type Activity struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"` // e.g. "Run", "Ride", "Workout"
	Distance         float64 `json:"distance"`
	Private          bool    `json:"private"`
	AverageSpeed     float64 `json:"average_speed"`
	AverageHeartrate float64 `json:"average_heartrate"`
	MaxHeartrate     float64 `json:"max_heartrate"`
}
