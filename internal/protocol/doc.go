// Package protocol owns the M2M wire contract spoken by the payment terminal.
//
// Ownership boundary:
// - tag and message-type registry
// - message building and encoding
// - tolerant response decoding with PAN redaction
//
// The generic 3+3 ASCII TLV primitives live in protocol/tlv and the nested
// print-data stream is handled by protocol/receipt.
package protocol
