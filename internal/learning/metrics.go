package learning

import "github.com/ShayCichocki/cadre/pkg/models"

// Metric increments applied when patterns are recorded.
const (
	velocityPerPattern  = 0.05
	confidenceIncrement = 0.1
)

// Metrics are the aggregate heuristics tracked alongside the log.
// Every value stays within [0,1].
type Metrics struct {
	LearningVelocity            float64 `json:"learningVelocity"`
	TransformationEffectiveness float64 `json:"transformationEffectiveness"`
	EmergenceQuotient           float64 `json:"emergenceQuotient"`
}

// Add returns m increased by delta, clamped to [0,1].
func (m Metrics) Add(delta Metrics) Metrics {
	return Metrics{
		LearningVelocity:            Clamp01(m.LearningVelocity + delta.LearningVelocity),
		TransformationEffectiveness: Clamp01(m.TransformationEffectiveness + delta.TransformationEffectiveness),
		EmergenceQuotient:           Clamp01(m.EmergenceQuotient + delta.EmergenceQuotient),
	}
}

// patternDelta is the metric change caused by recording p.
func patternDelta(p models.LearningPattern) Metrics {
	d := Metrics{LearningVelocity: velocityPerPattern}
	switch p.Kind {
	case models.KindTransformation:
		d.TransformationEffectiveness = p.Confidence * confidenceIncrement
	case models.KindSynthesis, models.KindMetaLearning:
		d.EmergenceQuotient = p.Confidence * confidenceIncrement
	}
	return d
}

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
