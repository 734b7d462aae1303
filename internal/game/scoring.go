package game

// ScoreRound computes one round's results: base correctness deltas, the
// domino cascade, the crisis rule, then the clamped final scores. Pure
// function of its inputs; callers commit the result separately.
//
// Teams must be sorted by ascending ID so the domino pass is reproducible.
func ScoreRound(teams []Team, q Question, rules Rules) RoundResult {
	result := RoundResult{
		Teams:        make([]TeamResult, 0, len(teams)),
		DominoChains: []DominoChain{},
	}

	byID := make(map[int]*Team, len(teams))
	resultByID := make(map[int]*TeamResult, len(teams))
	var wrong []int

	// Base pass: correctness and allIn doubling. A missing answer counts as
	// incorrect and participates fully in the domino and crisis passes.
	for i := range teams {
		team := &teams[i]
		byID[team.ID] = team

		isCorrect := team.Answer != nil && *team.Answer == q.CorrectAnswer
		change := rules.CorrectPoints
		if !isCorrect {
			change = rules.WrongPoints
			wrong = append(wrong, team.ID)
		}
		if team.ActiveCards[CardAllIn] {
			change *= 2
		}

		used := make(map[CardType]bool, len(AllCards))
		for _, card := range AllCards {
			used[card] = team.ActiveCards[card]
		}

		result.Teams = append(result.Teams, TeamResult{
			ID:             team.ID,
			Name:           team.Name,
			Answer:         team.Answer,
			IsCorrect:      isCorrect,
			ScoreChange:    change,
			ScoreBefore:    team.Score,
			UsedCards:      used,
			RedirectTarget: team.RedirectTarget,
		})
	}
	for i := range result.Teams {
		resultByID[result.Teams[i].ID] = &result.Teams[i]
	}

	// Domino pass: every wrong team knocks its successor. An immune
	// successor blocks the link outright; a redirecting successor passes the
	// penalty to its recorded target instead.
	for _, from := range wrong {
		successorID := (from % rules.TeamCount) + 1
		successor, ok := byID[successorID]
		if !ok {
			continue
		}
		if successor.ActiveCards[CardImmunity] {
			continue
		}
		target := successorID
		if successor.ActiveCards[CardRedirect] && successor.RedirectTarget != 0 {
			target = successor.RedirectTarget
		}
		result.DominoChains = append(result.DominoChains, DominoChain{
			From:    from,
			To:      target,
			Penalty: rules.DominoPenalty,
		})
		// A redirect aimed at a team outside the roster records the chain
		// but lands nowhere.
		if tr, ok := resultByID[target]; ok {
			tr.ScoreChange += rules.DominoPenalty
		}
	}

	// Crisis pass: enough wrong answers penalize everyone, cards or not.
	if len(wrong) >= rules.CrisisThreshold {
		result.IsCrisis = true
		for i := range result.Teams {
			result.Teams[i].ScoreChange += rules.CrisisPenalty
		}
	}

	for i := range result.Teams {
		tr := &result.Teams[i]
		tr.ScoreAfter = max(rules.MinScore, tr.ScoreBefore+tr.ScoreChange)
	}

	return result
}
