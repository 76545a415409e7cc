package pipeline

// highVolumeImpressions is the threshold above which a keyword counts as
// high search volume.
const highVolumeImpressions = 1000

// Score computes the opportunity score and recommendations for a matched
// record. The rules are additive and evaluated in a fixed order: one
// position-band bonus, one bonus per missing presence signal, and a search
// volume bonus. Identical inputs always produce identical output.
func Score(rec MatchedRecord) ScoredRecord {
	score := 0
	var recommendations []string

	switch {
	case rec.Position >= 3 && rec.Position <= 5:
		score += 30
		recommendations = append(recommendations, "Very close to top 3 - high priority")
	case rec.Position >= 6 && rec.Position <= 10:
		score += 20
		recommendations = append(recommendations, "On page 1 - good opportunity")
	case rec.Position >= 11 && rec.Position <= 20:
		score += 10
		recommendations = append(recommendations, "On page 2 - worth optimizing")
	}

	if !rec.InTitle {
		score += 15
		recommendations = append(recommendations, "Add keyword to title tag")
	}
	if !rec.InH1 {
		score += 10
		recommendations = append(recommendations, "Add keyword to H1 tag")
	}
	if !rec.InContent {
		score += 5
		recommendations = append(recommendations, "Include keyword naturally in content")
	}

	if rec.Impressions > highVolumeImpressions {
		score += 10
		recommendations = append(recommendations, "High search volume keyword")
	}

	return ScoredRecord{
		MatchedRecord:    rec,
		OpportunityScore: score,
		Recommendations:  recommendations,
	}
}
