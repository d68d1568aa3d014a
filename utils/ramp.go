package utils

import "github.com/fogleman/ease"

// RampValue returns the value at step of a numSteps ramp from start to target, eased so the change slows
// as it approaches the target. The last step always returns target.
func RampValue(start, target float64, step, numSteps int) float64 {
	if numSteps <= 1 || step >= numSteps-1 {
		return target
	}
	progress := Clamp(float64(step)/float64(numSteps-1), 0, 1)
	return start + (target-start)*ease.OutQuad(progress)
}
