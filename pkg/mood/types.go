package mood

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownCategory = errors.New("unknown mood category")
)

// Category is a self-reported emotional state.
type Category string

const (
	Happy     Category = "happy"
	Neutral   Category = "neutral"
	Sad       Category = "sad"
	Stressed  Category = "stressed"
	Depressed Category = "depressed"
)

// Categories returns every known category, happiest first.
func Categories() []Category {
	return []Category{Happy, Neutral, Sad, Stressed, Depressed}
}

// ParseCategory accepts any casing and surrounding whitespace.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case Happy, Neutral, Sad, Stressed, Depressed:
		return true
	}
	return false
}

// Score maps a category onto the 1-5 scale used by the analyzer.
// Sad and stressed share a score. Anything outside the enumeration scores
// as neutral.
func (c Category) Score() int {
	switch c {
	case Happy:
		return 5
	case Neutral:
		return 3
	case Sad, Stressed:
		return 2
	case Depressed:
		return 1
	default:
		return 3
	}
}

// Sample is one mood check-in. Samples are never edited once recorded.
type Sample struct {
	ID         uuid.UUID `json:"id"`
	SubjectID  string    `json:"subject_id"`
	Category   Category  `json:"mood"`
	RecordedAt time.Time `json:"recorded_at"`
	Note       string    `json:"note,omitempty"`
}

type Direction string

const (
	Improving Direction = "improving"
	Declining Direction = "declining"
	Stable    Direction = "stable"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Trend is recomputed from the current samples on every call and never stored.
type Trend struct {
	Direction   Direction `json:"direction"`
	RiskLevel   RiskLevel `json:"risk_level"`
	ShouldAlert bool      `json:"should_alert"`
}

type Prediction string

const (
	PredictionPositive   Prediction = "positive"
	PredictionNeutral    Prediction = "neutral"
	PredictionConcerning Prediction = "concerning"
)

// Forecast is a fixed mapping from trend direction, not a statistical model.
type Forecast struct {
	Prediction      Prediction `json:"prediction"`
	Confidence      float64    `json:"confidence"`
	Recommendations []string   `json:"recommendations"`
}

// Status is the triage label shown on the clinician roster.
type Status string

const (
	StatusCritical   Status = "critical"
	StatusMonitoring Status = "monitoring"
	StatusImproving  Status = "improving"
	StatusStable     Status = "stable"
)
