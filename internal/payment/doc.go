// Package payment drives the two-phase M2M exchange with a card terminal.
//
// A transaction moves Idle -> AwaitingAuthorization -> AwaitingConfirmation
// -> Completed. Phase one asks the terminal to authorize an amount and waits
// for the cardholder; phase two confirms the authorized STAN on the same
// connection and carries the receipt and card details.
//
// Ownership boundary:
// - request validation and sequence generation
// - phase sequencing and response interpretation
// - error classification into the caller-facing Error type
// - detached completion notifications
//
// Socket I/O is behind Transport; notification delivery is behind Notifier.
package payment
