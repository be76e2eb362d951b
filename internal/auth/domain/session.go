package domain

import "time"

// Session is the server-side record that keeps an access token alive. The
// token is only honoured while its record exists.
type Session struct {
	Key         string    `json:"-"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Role        string    `json:"role,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
