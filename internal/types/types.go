package types

import "time"

// Profile is the owning entity for uploaded media. The ingestion pipeline is
// only invoked after the caller has been resolved to a profile; Profession is
// handed to the content classifier as the domain hint.
type Profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Profession string    `json:"profession"`
	CreatedAt  time.Time `json:"created_at"`
}
