package playback

// State is the widget's own play/pause flag and progress. Nothing drives it
// but the user; it is not connected to any audio source or clock.
type State struct {
	Playing  bool
	Progress float64 // percent, 0-100
}

// Toggle flips the play flag and reports the new value.
func (s *State) Toggle() bool {
	s.Playing = !s.Playing
	return s.Playing
}

func (s *State) SetProgress(percent float64) {
	s.Progress = clampPercent(percent)
}

func (s *State) Nudge(delta float64) {
	s.SetProgress(s.Progress + delta)
}

// Fraction returns progress in the 0-1 range for bar widgets.
func (s State) Fraction() float64 {
	return clampPercent(s.Progress) / 100
}

// Elapsed maps progress onto a track duration.
func (s State) Elapsed(durationSecs int64) int64 {
	if durationSecs <= 0 {
		return 0
	}
	return int64(s.Fraction() * float64(durationSecs))
}

func (s State) Label() string {
	if s.Playing {
		return "playing"
	}
	return "paused"
}

func clampPercent(p float64) float64 {
	if p != p || p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
