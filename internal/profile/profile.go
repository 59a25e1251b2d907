// Package profile contains author profiles and their generation credits.
package profile

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MonthlyCredits is the number of generation credits granted each month.
// Credits are measured in characters of narrated text.
const MonthlyCredits = 50000

// Errors returned by profile operations.
var (
	ErrEmptyUsername       = errors.New("profile: username is required")
	ErrInsufficientCredits = errors.New("profile: insufficient credits")
)

// Author is a creator account on the platform.
type Author struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	WebsiteURL     string    `json:"website_url,omitempty"`
	Subscribers    int       `json:"subscribers"`
	Credits        int       `json:"credits"`
	CreditsResetAt time.Time `json:"credits_reset_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAuthor creates an author with a fresh monthly credit allowance.
func NewAuthor(username, displayName, bio string) (*Author, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}

	now := time.Now().UTC()
	return &Author{
		ID:             uuid.NewString(),
		Username:       username,
		DisplayName:    displayName,
		Bio:            bio,
		Credits:        MonthlyCredits,
		CreditsResetAt: nextMonth(now),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ResetCreditsIfDue restores the monthly allowance when the reset time has
// passed. It reports whether a reset happened.
func (a *Author) ResetCreditsIfDue(now time.Time) bool {
	if now.Before(a.CreditsResetAt) {
		return false
	}
	a.Credits = MonthlyCredits
	a.CreditsResetAt = nextMonth(now)
	a.UpdatedAt = now
	return true
}

// CanAfford reports whether the author has at least chars credits left.
func (a *Author) CanAfford(chars int) bool {
	return a.Credits >= chars
}

// Charge deducts chars credits, or returns ErrInsufficientCredits.
func (a *Author) Charge(chars int) error {
	if !a.CanAfford(chars) {
		return ErrInsufficientCredits
	}
	a.Credits -= chars
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Clone returns a deep copy of the author.
func (a *Author) Clone() *Author {
	clone := *a
	return &clone
}

// nextMonth returns the first instant of the month after now.
func nextMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
