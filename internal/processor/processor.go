// Package processor decides which of an athlete's recent activities need
// remediation and executes it: matching activities are made private and
// renamed with a "! " prefix so the operator can spot them later.
package processor

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/privacy2run/internal/model"
	"github.com/iliyamo/privacy2run/internal/queue"
	"github.com/iliyamo/privacy2run/internal/strava"
)

// lookbackSeconds bounds each sweep to activities uploaded since
// "yesterday".
const lookbackSeconds = 86400

// insignificantDistance is the exclusive threshold under which a Run or
// Ride is considered noise. A distance of exactly 100.0 is significant.
const insignificantDistance = 100.0

// Processor runs the per-athlete part of a sweep. Publish, when set, is
// called after each successful remediation; failures there are ignored,
// the event stream is best-effort.
type Processor struct {
	Client  *strava.Client
	Publish func(ctx context.Context, ev queue.ActivityRemediatedEvent) error
}

func New(client *strava.Client) *Processor { return &Processor{Client: client} }

// IsWorkout reports whether the activity is a public Workout entry.
func IsWorkout(a model.Activity) bool {
	return a.Type == "Workout" && !a.Private
}

// IsInsignificant reports whether the activity is a Run or Ride below the
// distance threshold.
func IsInsignificant(a model.Activity) bool {
	return (a.Type == "Run" && a.Distance < insignificantDistance) ||
		(a.Type == "Ride" && a.Distance < insignificantDistance)
}

// NeedsRemediation is the classification rule applied to every fetched
// activity.
func NeedsRemediation(a model.Activity) bool {
	return IsWorkout(a) || IsInsignificant(a)
}

// ProcessUser fetches the athlete's activities since yesterday and
// remediates every one that matches. Any listing failure is treated as a
// stale token: onInvalid is invoked once and nothing else happens. A
// failed remediation only skips that activity; the rest of the batch is
// still processed, and nothing is rolled back.
func (p *Processor) ProcessUser(ctx context.Context, code model.AuthCode, onInvalid func()) {
	after := time.Now().Unix() - lookbackSeconds

	activities, err := p.Client.ListActivities(ctx, code.Token, after)
	if err != nil {
		log.Printf("sweep: list activities for athlete %d failed: %v", code.ID, err)
		onInvalid()
		return
	}

	for _, a := range activities {
		p.processActivity(ctx, code, a)
	}
}

func (p *Processor) processActivity(ctx context.Context, code model.AuthCode, a model.Activity) {
	if !NeedsRemediation(a) {
		return
	}

	newName := "! " + a.Name
	if err := p.Client.UpdateActivity(ctx, code.Token, a.ID, newName, true); err != nil {
		log.Printf("sweep: remediate activity %d (%q) failed: %v", a.ID, a.Name, err)
		return
	}
	log.Printf("sweep: remediated activity %d (%q) for athlete %d", a.ID, a.Name, code.ID)

	if p.Publish == nil {
		return
	}
	reason := "insignificant"
	if IsWorkout(a) {
		reason = "workout"
	}
	// Best-effort: the publisher logs its own failures.
	_ = p.Publish(ctx, queue.ActivityRemediatedEvent{
		AthleteID:    code.ID,
		ActivityID:   a.ID,
		ActivityType: a.Type,
		Distance:     a.Distance,
		OldName:      a.Name,
		NewName:      newName,
		Reason:       reason,
		RemediatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}
