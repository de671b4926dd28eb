package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChargeDelay(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		debug bool
		want  time.Duration
	}{
		{
			name: "sunday evening",
			now:  time.Date(2024, 5, 12, 23, 0, 0, 0, time.UTC),
			want: time.Hour,
		},
		{
			name: "monday midnight waits a full week",
			now:  time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
			want: 7 * 24 * time.Hour,
		},
		{
			name: "wednesday noon",
			now:  time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
			want: 4*24*time.Hour + 12*time.Hour,
		},
		{
			name:  "debug timing",
			now:   time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
			debug: true,
			want:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chargeDelay(tt.now, tt.debug))
		})
	}
}
