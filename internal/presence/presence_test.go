package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    Status
	}{
		{"just now", 0, StatusOnline},
		{"90 seconds ago", 90 * time.Second, StatusOnline},
		{"exactly 2 minutes ago", 2 * time.Minute, StatusAway},
		{"5 minutes ago", 5 * time.Minute, StatusAway},
		{"exactly 10 minutes ago", 10 * time.Minute, StatusOffline},
		{"15 minutes ago", 15 * time.Minute, StatusOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(now.Add(-tt.elapsed), now))
		})
	}
}
