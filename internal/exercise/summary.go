package exercise

// FeedbackStat aggregates one feedback message across a session.
type FeedbackStat struct {
	Count    int      `json:"count"`
	Severity Severity `json:"severity"`
}

// Summary aggregates a session's history: total reps, frame counts, the
// share of frames with fully correct form, and per-message feedback totals.
type Summary struct {
	SessionID         string                  `json:"session_id"`
	Exercise          string                  `json:"exercise"`
	TotalReps         int                     `json:"total_reps"`
	TotalFrames       int                     `json:"total_frames"`
	CorrectFormFrames int                     `json:"correct_form_frames"`
	FormAccuracy      float64                 `json:"form_accuracy"`
	Feedback          map[string]FeedbackStat `json:"feedback_summary"`
}

// Summary computes the session summary from the accumulated history. A frame
// counts as correct form when it produced no feedback, or only feedback
// marked correct.
func (a *Analyzer) Summary() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		SessionID: a.id.String(),
		Exercise:  a.profile.Name,
		TotalReps: a.repCount,
		Feedback:  make(map[string]FeedbackStat),
	}

	s.TotalFrames = len(a.feedbackHist)
	for _, frame := range a.feedbackHist {
		correct := true
		for _, fb := range frame {
			if !fb.IsCorrect {
				correct = false
			}
			stat := s.Feedback[fb.Message]
			stat.Count++
			stat.Severity = fb.Severity
			s.Feedback[fb.Message] = stat
		}
		if correct {
			s.CorrectFormFrames++
		}
	}

	if s.TotalFrames > 0 {
		s.FormAccuracy = float64(s.CorrectFormFrames) / float64(s.TotalFrames) * 100
	}
	return s
}
