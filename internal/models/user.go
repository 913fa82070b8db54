package models

import "time"

type User struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsBlocked bool      `json:"isBlocked"`
	IsActive  bool      `json:"isActive"`
	Rank      string    `json:"rank,omitempty"`
	SponsorID string    `json:"sponsorId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Status is the label shown in the users table.
func (u User) Status() string {
	switch {
	case u.IsBlocked:
		return "BLOCKED"
	case u.IsActive:
		return "ACTIVE"
	default:
		return "INACTIVE"
	}
}

// NetworkMember is one row of a user's referral downline.
type NetworkMember struct {
	UID           string    `json:"uid"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Level         int       `json:"level"`
	IsActive      bool      `json:"isActive"`
	TotalInvested string    `json:"totalInvested,omitempty"`
	JoinedAt      time.Time `json:"createdAt"`
}
