package model

// AuthCode represents one athlete's authorization grant as stored in the
// `auth_codes` table and cached in the in-memory registry. A record is
// created when an OAuth code exchange succeeds and is never deleted; a
// failing activity fetch only flips Valid to false so the sweeper skips
// the athlete until they re-authorize.
//
// Fields:
//  ID    – Strava athlete id (primary key, immutable).
//  Token – bearer token with write scope. Replaced on re-authorization.
//  Name  – display label, the account email when Strava returns one.
//  Valid – whether the token is believed usable.
type AuthCode struct {
	ID    int64  // auth_codes.athlete_id
	Token string // auth_codes.token
	Name  string // auth_codes.name
	Valid bool   // auth_codes.valid
}
