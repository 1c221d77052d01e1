// Package chat composes canned replies to inbound messages and persists both
// sides of the exchange.
//
// # Flow
//
// ProcessMessage saves the user turn, synthesizes the reply with BuildReply,
// saves the AI turn, and returns a ChatResponse whose ID is the AI message's
// ID. Composition never executes tools and never calls out: the reply is a
// pure function of the message text and the requested tool names, so two
// identical requests produce byte-identical reply text.
//
// # Failure semantics
//
// A persistence failure on either write yields a success=false response
// carrying the failure description. The two writes are not wrapped in a
// transaction: when the AI write fails the user turn stays stored. Callers
// that need exactly-once semantics must not assume compensation here.
package chat
