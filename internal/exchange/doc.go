// Package exchange runs the Request/Query/Reply/Response conversation over a
// pair of byte streams.
//
// Ownership boundary:
//   - Server is the authoritative driver. It reads one Request, queries each
//     distinct symbol once in order of first appearance, evaluates the
//     substituted expression, and answers with a Response.
//   - Client is the passive responder inside an exchange it opened. It answers
//     every Query from its Resolver and stops at Response or BadSeq.
//   - Any message that does not fit the receiver's current phase is answered
//     with BadSeq and aborts only the current exchange.
//
// Both sides use blocking I/O and are not safe for concurrent use; the only
// way to interrupt a blocked read is to close the underlying stream.
package exchange
