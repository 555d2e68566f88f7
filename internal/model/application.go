package model

import "time"

// Application describes a registered client (first- or third-party).
// Tokens issued to the application's users are signed with SecretKey and
// expire at ExpiryDate, a fixed instant shared by every token of the
// application, not a rolling window from issuance time.
//
// SecretKey is a signing credential and is excluded from JSON so that no
// read path can leak it.
type Application struct {
	ID         uint64    `json:"id"`
	AppID      string    `json:"appId"`
	AppName    string    `json:"appName"`
	SecretKey  string    `json:"-"`
	ExpiryDate time.Time `json:"expirydate"`
}

// ApplicationUpdate carries the mutable application fields.  The secret
// key may be rotated through this struct but is still never read back.
type ApplicationUpdate struct {
	AppName    *string    `json:"appName"`
	SecretKey  *string    `json:"secretKey"`
	ExpiryDate *time.Time `json:"expirydate"`
}
