package learning

import "github.com/ShayCichocki/cadre/pkg/models"

// Confidence scores a transformation by how much of its input survives into
// its output: |output| / |input| clamped to [0,1].
func Confidence(input, output models.Payload) float64 {
	in, out := input.Len(), output.Len()
	switch {
	case in == 0 && out == 0:
		return 0
	case in == 0:
		return 1
	default:
		return Clamp01(float64(out) / float64(in))
	}
}

// feeds reports whether any output key of earlier appears among the input
// keys of later.
func feeds(earlier, later models.LearningPattern) bool {
	for k := range earlier.Output.Data {
		if _, ok := later.Input.Data[k]; ok {
			return true
		}
	}
	return false
}
