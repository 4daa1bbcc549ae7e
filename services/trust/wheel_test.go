package trust

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentAt(t *testing.T) {
	tests := []struct {
		angle float64
		prize int64
	}{
		{0, 20},
		{10, 20},
		{30, 300},
		{45, 300},
		{90, 150},
		{135, 500},
		{180, 50},
		{225, 200},
		{270, 100},
		{315, 50},
		{350, 20},
		{360, 20},
	}

	for _, tc := range tests {
		require.Equal(t, tc.prize, SegmentAt(tc.angle), "angle %v", tc.angle)
	}
}

func TestDrawReturnsKnownSegment(t *testing.T) {
	for i := 0; i < 100; i++ {
		angle, prize := Draw()
		require.GreaterOrEqual(t, angle, 0.0)
		require.Less(t, angle, 360.0)
		require.Equal(t, SegmentAt(angle), prize)
		require.Contains(t, []int64{20, 50, 100, 200, 500, 150, 300}, prize)
	}
}
