// Package models defines client-side data models used by the TinniTrack
// client: auth sessions and events, participant profiles, the pending email
// verification marker, sign-up drafts and research studies.
package models
