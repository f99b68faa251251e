// pkg/registry/default.go
package registry

// Default returns the reference questionnaire registry. The production
// registry is loaded from configs/questions.json; this copy backs tests and
// the tuning compare tool.
func Default() *Registry {
	reg, err := build(defaultFile())
	if err != nil {
		// The default table is static; a build failure here is a
		// programming error.
		panic(err)
	}
	return reg
}

func defaultFile() QuestionFile {
	ordinalFrequency := map[string]int{
		"never":             0,
		"rarely":            1,
		"occasionally":      2,
		"regularly":         3,
		"prefer_not_to_say": -1,
	}

	return QuestionFile{
		Version: "2024.2",
		Questions: []QuestionWire{
			// Hard-filter questions. Scored as 0.0 sentinels only.
			{ID: "q_gender", Section: "lifestyle", Type: "categorical_exact", HardFilterRole: "gender"},
			{ID: "q_age_pref", Section: "lifestyle", Type: "age_range", HardFilterRole: "age"},

			// Lifestyle.
			{ID: "q_smoking", Section: "lifestyle", Type: "ordinal",
				Ordinal: ordinalFrequency, UncertainValues: []string{"prefer_not_to_say"}},
			{ID: "q_drinking", Section: "lifestyle", Type: "ordinal",
				Ordinal: ordinalFrequency, UncertainValues: []string{"prefer_not_to_say"}},
			{ID: "q_exercise", Section: "lifestyle", Type: "numeric_interval"},
			{ID: "q_diet", Section: "lifestyle", Type: "categorical_set"},
			{ID: "q_pets", Section: "lifestyle", Type: "multi_select"},
			{ID: "q_sleep_schedule", Section: "lifestyle", Type: "sleep_schedule"},
			{ID: "q_tidiness", Section: "lifestyle", Type: "directional"},
			{ID: "q_social_energy", Section: "lifestyle", Type: "same_similar"},
			{ID: "q_wants_kids", Section: "lifestyle", Type: "binary"},
			{ID: "q_religion_practice", Section: "lifestyle", Type: "ordinal",
				Ordinal: map[string]int{
					"not_practicing":    0,
					"culturally":        1,
					"occasionally":      2,
					"devout":            3,
					"prefer_not_to_say": -1,
				},
				UncertainValues: []string{"prefer_not_to_say"}},

			// Personality.
			{ID: "q_affection_language", Section: "personality", Type: "affection_layers"},
			{ID: "q_conflict_style", Section: "personality", Type: "conflict_style"},
			{ID: "q_adventurousness", Section: "personality", Type: "numeric_interval"},
			{ID: "q_introversion", Section: "personality", Type: "same_similar"},
			{ID: "q_humor_importance", Section: "personality", Type: "numeric_interval"},
			{ID: "q_ambition", Section: "personality", Type: "directional"},
			{ID: "q_punctuality", Section: "personality", Type: "binary"},
			{ID: "q_openness", Section: "personality", Type: "numeric_interval"},
		},
	}
}
