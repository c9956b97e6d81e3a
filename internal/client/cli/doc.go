// Package cli is the interactive TinniTrack terminal client.
//
// App wires configuration, local storage, the gRPC gateway and the session
// controller, then runs a REPL whose commands follow the current session
// phase. A loopback HTTP server receives the redirects from confirmation and
// password-recovery emails so they can be handled without copy-pasting.
package cli
