package mood

var suggestionsByRisk = map[RiskLevel][]string{
	RiskHigh: {
		"Consider scheduling a VR therapy session with a mental health professional",
		"Try our guided meditation program - 10 minutes daily can improve mood by 25%",
		"Join our peer support group for community connection",
	},
	RiskMedium: {
		"Practice deep breathing exercises for 5 minutes when feeling stressed",
		"Take a 15-minute walk outdoors to boost endorphins",
		"Try journaling your thoughts to process emotions",
	},
	RiskLow: {
		"Keep up the great work! Your mood is stable and positive",
		"Consider sharing your wellness strategies with others in our community",
		"Explore our advanced wellness features for continued growth",
	},
}

var guidanceByRisk = map[RiskLevel]string{
	RiskHigh:   "Recommend immediate cognitive behavioral therapy (CBT) sessions. Consider mindfulness-based stress reduction techniques. Schedule weekly check-ins.",
	RiskMedium: "Suggest regular therapy sessions with focus on mood stabilization. Incorporate physical activity and sleep hygiene counseling.",
	RiskLow:    "Continue current treatment plan. Consider preventive wellness coaching and stress management techniques.",
}

// TherapySuggestions returns the three patient-facing suggestions for the
// risk level of samples.
func TherapySuggestions(samples []Sample) []string {
	return SuggestionsFor(AnalyzeTrend(samples).RiskLevel)
}

// SuggestionsFor returns a fresh copy of the suggestion triple for risk.
// Unknown levels get the low-risk triple.
func SuggestionsFor(risk RiskLevel) []string {
	src, ok := suggestionsByRisk[risk]
	if !ok {
		src = suggestionsByRisk[RiskLow]
	}
	return append([]string(nil), src...)
}

// ClinicianGuidance is the clinician-facing counterpart of SuggestionsFor.
func ClinicianGuidance(risk RiskLevel) string {
	if g, ok := guidanceByRisk[risk]; ok {
		return g
	}
	return guidanceByRisk[RiskLow]
}
