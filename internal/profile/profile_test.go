package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthor(t *testing.T) {
	author, err := NewAuthor("alice", "Alice", "Narrator of short fiction.")
	require.NoError(t, err)

	assert.NotEmpty(t, author.ID)
	assert.Equal(t, "alice", author.Username)
	assert.Equal(t, MonthlyCredits, author.Credits)
	assert.True(t, author.CreditsResetAt.After(author.CreatedAt))
}

func TestNewAuthorRequiresUsername(t *testing.T) {
	_, err := NewAuthor("", "Alice", "")
	assert.ErrorIs(t, err, ErrEmptyUsername)
}

func TestAuthorCharge(t *testing.T) {
	author, err := NewAuthor("alice", "", "")
	require.NoError(t, err)

	require.NoError(t, author.Charge(1000))
	assert.Equal(t, MonthlyCredits-1000, author.Credits)

	assert.True(t, author.CanAfford(author.Credits))
	assert.False(t, author.CanAfford(author.Credits+1))

	assert.ErrorIs(t, author.Charge(MonthlyCredits), ErrInsufficientCredits)
	assert.Equal(t, MonthlyCredits-1000, author.Credits)
}

func TestAuthorResetCreditsIfDue(t *testing.T) {
	author, err := NewAuthor("alice", "", "")
	require.NoError(t, err)
	require.NoError(t, author.Charge(5000))

	// Before the reset time nothing happens.
	assert.False(t, author.ResetCreditsIfDue(author.CreditsResetAt.Add(-time.Hour)))
	assert.Equal(t, MonthlyCredits-5000, author.Credits)

	// At or past the reset time the allowance is restored and the next
	// reset lands at the start of the following month.
	resetTime := author.CreditsResetAt
	assert.True(t, author.ResetCreditsIfDue(resetTime))
	assert.Equal(t, MonthlyCredits, author.Credits)
	assert.Equal(t, time.Date(resetTime.Year(), resetTime.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0), author.CreditsResetAt)
}

func TestNextMonth(t *testing.T) {
	tests := []struct {
		now  time.Time
		want time.Time
	}{
		{
			time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC),
			time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			time.Date(2026, time.December, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, nextMonth(tt.now))
	}
}
