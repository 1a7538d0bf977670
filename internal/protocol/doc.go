// Package protocol owns the stdio wire contract and message families.
//
// Ownership boundary:
// - envelope contract (Message / Decoder, Send / Receive)
// - client-to-server (C2S) and server-to-client (S2C) message families
// - binding of each family to its frame codec
//
// Framing primitives live in the frame (length-prefixed binary) and
// textline (newline-delimited JSON) subpackages.
package protocol
