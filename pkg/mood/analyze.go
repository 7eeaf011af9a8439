package mood

const (
	// MinSamples is the smallest history the analyzer will score.
	MinSamples = 3
	// WindowSize is how many of the most recent samples feed the average.
	WindowSize = 7
	// RecentSpan is how many of the newest window scores count toward badMoodsInRow.
	RecentSpan = 3

	lowScore          = 2
	improvingAbove    = 3.5
	decliningBelow    = 2.5
	highRiskBadStreak = 3
)

// WindowStats holds the intermediate values of a trend computation.
type WindowStats struct {
	Scores        []int   `json:"scores"`
	Average       float64 `json:"average"`
	BadMoodsInRow int     `json:"bad_moods_in_row"`
	Sufficient    bool    `json:"sufficient"`
}

// Window scores the trend window of samples, which must be in
// chronological order. With fewer than MinSamples samples it returns a
// zero value with Sufficient unset.
func Window(samples []Sample) WindowStats {
	if len(samples) < MinSamples {
		return WindowStats{}
	}

	recent := samples
	if len(recent) > WindowSize {
		recent = recent[len(recent)-WindowSize:]
	}

	scores := make([]int, len(recent))
	total := 0
	for i, s := range recent {
		scores[i] = s.Category.Score()
		total += scores[i]
	}

	tail := scores
	if len(tail) > RecentSpan {
		tail = tail[len(tail)-RecentSpan:]
	}
	bad := 0
	for _, score := range tail {
		if score <= lowScore {
			bad++
		}
	}

	return WindowStats{
		Scores:        scores,
		Average:       float64(total) / float64(len(scores)),
		BadMoodsInRow: bad,
		Sufficient:    true,
	}
}

// AnalyzeTrend derives direction, risk and the alert flag from a subject's
// samples in chronological order. It is total: short histories yield
// {stable, low, false}.
func AnalyzeTrend(samples []Sample) Trend {
	return trendFrom(Window(samples))
}

func trendFrom(w WindowStats) Trend {
	if !w.Sufficient {
		return Trend{Direction: Stable, RiskLevel: RiskLow, ShouldAlert: false}
	}

	direction := Stable
	switch {
	case w.Average > improvingAbove:
		direction = Improving
	case w.Average < decliningBelow:
		direction = Declining
	}

	risk := RiskLow
	switch {
	case w.BadMoodsInRow >= highRiskBadStreak:
		risk = RiskHigh
	case w.Average < decliningBelow:
		risk = RiskMedium
	}

	return Trend{
		Direction:   direction,
		RiskLevel:   risk,
		ShouldAlert: w.BadMoodsInRow >= highRiskBadStreak || (direction == Declining && risk == RiskHigh),
	}
}

// Status maps a trend onto the roster label: risk first, then direction.
func (t Trend) Status() Status {
	switch {
	case t.RiskLevel == RiskHigh:
		return StatusCritical
	case t.RiskLevel == RiskMedium:
		return StatusMonitoring
	case t.Direction == Improving:
		return StatusImproving
	default:
		return StatusStable
	}
}

// Severity orders statuses for triage, most urgent first.
func (s Status) Severity() int {
	switch s {
	case StatusCritical:
		return 0
	case StatusMonitoring:
		return 1
	case StatusStable:
		return 2
	case StatusImproving:
		return 3
	default:
		return 4
	}
}
