// Package client contains the remote-facing building blocks of the
// TinniTrack client.
//
// # Overview
//
// The package provides:
//  1. Gateway contracts (AuthGateway, ProfileGateway, StudyGateway) consumed
//     by the session controller and the study dashboard.
//  2. A gRPC implementation (GRPCClient) of all three. Request and response
//     bodies are google.protobuf.Struct messages. The client keeps the
//     session tokens in a metadata.Repository, injects the access token via
//     an interceptor, transparently refreshes expired tokens and publishes
//     auth-state changes to subscribers.
//  3. Auth redirect parsing (HandleAuthCallback) for links that carry tokens,
//     an exchange code or an error in the query or fragment.
//  4. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database with embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrEmailNotConfirmed,
// ErrNoSession, ErrRemote. Rejected redirects yield *CallbackError.
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All remote operations accept
// context.Context and honor cancellation.
package client
