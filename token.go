package qjob

import "time"

// AuthToken represents a short-lived bearer token obtained by exchanging a
// long-lived credential pair with a remote service's login endpoint. A token
// is owned exclusively by the driver instance that produced it.
type AuthToken struct {
	Token      string    `json:"jwt_token"`
	UserID     string    `json:"user_id"`
	Expiration time.Time `json:"expiration_date"`
}

// Populated returns a bool indicating if the token has been obtained yet.
func (a AuthToken) Populated() bool {
	return a.Token != ""
}

// Expired returns a bool indicating if the token's expiration has passed. A
// token with no recorded expiration is treated as unexpired.
func (a AuthToken) Expired(now time.Time) bool {
	return !a.Expiration.IsZero() && now.After(a.Expiration)
}
