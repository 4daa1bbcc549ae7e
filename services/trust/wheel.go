package trust

import (
	"math"
	"math/rand"
)

// Wheel segments, clockwise from the top pointer.
var wheelSegments = [...]int64{20, 50, 100, 200, 50, 500, 150, 300}

const segmentAngle = 360.0 / float64(len(wheelSegments))

// SegmentAt maps a final rotation angle (degrees) to the prize under the
// fixed top pointer.
func SegmentAt(angle float64) int64 {
	normalized := math.Mod(360-angle+segmentAngle/2, 360)
	if normalized < 0 {
		normalized += 360
	}
	idx := int(normalized/segmentAngle) % len(wheelSegments)
	return wheelSegments[idx]
}

// Draw spins the wheel server-side: a uniform rotation angle mapped to the
// segment under the pointer.
func Draw() (angle float64, prize int64) {
	angle = rand.Float64() * 360
	return angle, SegmentAt(angle)
}
