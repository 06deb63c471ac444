package track

// Info describes the track the widget is showing. The caller owns it and
// swaps it out when a new track is selected.
type Info struct {
	Title        string
	Artist       string
	Album        string
	DurationSecs int64
	CoverRef     string
	TrackID      string
}

func (t *Info) IsValid() bool {
	if t == nil {
		return false
	}
	return t.Title != "" && t.Artist != ""
}

func (t *Info) IsSameTrack(other *Info) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.TrackID != "" && other.TrackID != "" {
		return t.TrackID == other.TrackID
	}
	return t.Title == other.Title && t.Artist == other.Artist
}

// SameCover reports whether both tracks point at the same artwork.
// A nil track has no cover.
func (t *Info) SameCover(other *Info) bool {
	return t.Cover() == other.Cover()
}

func (t *Info) Cover() string {
	if t == nil {
		return ""
	}
	return t.CoverRef
}
