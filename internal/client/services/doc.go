// Package services contains application services of the TinniTrack client
// that sit between the session controller or CLI and the lower layers:
// locally persisted auth bookkeeping (pending email verification, sign-up
// drafts) and the studies dashboard.
package services
