package maintenance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDateOf_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	// 20:00 UTC on Jan 14 is already Jan 15 in Tokyo.
	instant := time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{2025, time.January, 14}, DateOf(instant, time.UTC))
	assert.Equal(t, Date{2025, time.January, 15}, DateOf(instant, tokyo))
}

func TestDate_Arithmetic(t *testing.T) {
	d := mustDate(t, "2025-02-27")

	assert.Equal(t, "2025-03-01", d.AddDays(2).String())
	assert.Equal(t, "2025-02-20", d.AddDays(-7).String())
	assert.Equal(t, 2, d.DaysUntil(d.AddDays(2)))
	assert.Equal(t, -7, d.DaysUntil(d.AddDays(-7)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.True(t, d.Equal(mustDate(t, "2025-02-27")))
	assert.True(t, Date{}.IsZero())
}

func TestDate_CompactRoundTrip(t *testing.T) {
	d := mustDate(t, "2025-04-05")
	assert.Equal(t, "20250405", d.Compact())

	back, err := ParseCompactDate(d.Compact())
	require.NoError(t, err)
	assert.Equal(t, d, back)

	_, err = ParseCompactDate("2025-04-05")
	assert.Error(t, err)
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-13-01", "2025-02-30", "15.01.2025"} {
		_, err := ParseDate(in)
		assert.Error(t, err, in)
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan("2025-01-15"))
	assert.Equal(t, "2025-01-15", d.String())

	require.NoError(t, d.Scan([]byte("2025-03-02")))
	assert.Equal(t, "2025-03-02", d.String())

	// Postgres DATE columns arrive as midnight UTC.
	require.NoError(t, d.Scan(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-30", d.String())

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("oops"))
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Due Date `json:"due"`
	}{Due: mustDate(t, "2025-01-15")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2025-01-15"}`, string(b))

	var out struct {
		Due Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2025-12-31"}`), &out))
	assert.Equal(t, "2025-12-31", out.Due.String())
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		from   time.Time
		months int
		want   time.Time
	}{
		{"plain", time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC), 3, time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC)},
		{"year rollover", time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), 3, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)},
		{"clamp to february", time.Date(2025, 1, 31, 8, 30, 0, 0, time.UTC), 1, time.Date(2025, 2, 28, 8, 30, 0, 0, time.UTC)},
		{"clamp to leap february", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"clamp to 30-day month", time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)},
		{"twelve months", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 12, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(AddMonths(tt.from, tt.months)), "got %s", AddMonths(tt.from, tt.months))
		})
	}
}
