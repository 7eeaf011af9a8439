package mood

type forecastRule struct {
	prediction      Prediction
	confidence      float64
	recommendations []string
}

var forecastByDirection = map[Direction]forecastRule{
	Improving: {
		prediction:      PredictionPositive,
		confidence:      0.85,
		recommendations: []string{"Continue current wellness routine", "Consider increasing physical activity"},
	},
	Declining: {
		prediction:      PredictionConcerning,
		confidence:      0.78,
		recommendations: []string{"Schedule check-in with healthcare provider", "Increase self-care activities"},
	},
	Stable: {
		prediction:      PredictionNeutral,
		confidence:      0.65,
		recommendations: []string{"Maintain current habits", "Consider trying new wellness activities"},
	},
}

// PredictForecast re-derives the trend of samples and maps its direction
// to a forecast.
func PredictForecast(samples []Sample) Forecast {
	return ForecastFor(AnalyzeTrend(samples).Direction)
}

// ForecastFor maps a direction to its forecast. Unknown directions are
// treated as stable.
func ForecastFor(d Direction) Forecast {
	rule, ok := forecastByDirection[d]
	if !ok {
		rule = forecastByDirection[Stable]
	}
	return Forecast{
		Prediction:      rule.prediction,
		Confidence:      rule.confidence,
		Recommendations: append([]string(nil), rule.recommendations...),
	}
}
