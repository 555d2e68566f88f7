// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// VCodeIssuedEvent is published when a verification code is issued for a
// login attempt.  The SMS/mail gateway worker consumes it and delivers
// the code out of band; the API server itself never talks to carriers.
type VCodeIssuedEvent struct {
	Identifier string `json:"identifier"` // mobile number or mail address
	Channel    string `json:"channel"`    // "sms" or "mail"
	Code       string `json:"code"`
	TTLSeconds int    `json:"ttl_seconds"`
	IssuedAt   string `json:"issued_at"` // RFC 3339, UTC
}
