package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	end := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		stored EventStatus
		now    time.Time
		want   EventStatus
	}{
		{
			name:   "scheduled before end stays scheduled",
			stored: EventStatusScheduled,
			now:    end.Add(-time.Hour),
			want:   EventStatusScheduled,
		},
		{
			name:   "ongoing before end stays ongoing",
			stored: EventStatusOngoing,
			now:    end.Add(-time.Minute),
			want:   EventStatusOngoing,
		},
		{
			name:   "scheduled at end becomes completed",
			stored: EventStatusScheduled,
			now:    end,
			want:   EventStatusCompleted,
		},
		{
			name:   "ongoing past end becomes completed",
			stored: EventStatusOngoing,
			now:    end.Add(time.Hour),
			want:   EventStatusCompleted,
		},
		{
			name:   "completed stays completed",
			stored: EventStatusCompleted,
			now:    end.Add(time.Hour),
			want:   EventStatusCompleted,
		},
		{
			name:   "canceled before end stays canceled",
			stored: EventStatusCanceled,
			now:    end.Add(-time.Hour),
			want:   EventStatusCanceled,
		},
		{
			name:   "canceled past end stays canceled",
			stored: EventStatusCanceled,
			now:    end.Add(time.Hour),
			want:   EventStatusCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.stored, end, tt.now)
			assert.Equal(t, tt.want, got)

			// Deriving again from the result at the same instant changes nothing.
			assert.Equal(t, got, DeriveStatus(got, end, tt.now))
		})
	}
}

func TestEventStatusClosed(t *testing.T) {
	assert.False(t, EventStatusScheduled.Closed())
	assert.False(t, EventStatusOngoing.Closed())
	assert.True(t, EventStatusCompleted.Closed())
	assert.True(t, EventStatusCanceled.Closed())
}

func TestUTCTimeNormalizesOffsets(t *testing.T) {
	var parsed UTCTime
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-01T20:00:00+02:00"`), &parsed))

	assert.Equal(t, time.UTC, parsed.Location())
	assert.Equal(t, time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC), parsed.Time)

	out, err := json.Marshal(parsed)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01T18:00:00Z"`, string(out))
}

func TestUTCTimeRejectsGarbage(t *testing.T) {
	var parsed UTCTime
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &parsed))
}
