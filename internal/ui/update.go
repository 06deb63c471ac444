package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"karolbroda.com/coverglow/internal/colors"
	"karolbroda.com/coverglow/internal/sampler"
	"karolbroda.com/coverglow/internal/track"
)

const progressStep = 5.0

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case TrackChangedMsg:
		next, cmd := m.handleTrackChange(msg.Track)
		return next, cmd

	case sourceTrackMsg:
		next, cmd := m.handleTrackChange(msg.track)
		return next, tea.Batch(cmd, next.listenForTracks())

	case sourceClosedMsg:
		m.logger.Debug("track source closed")
		return m, nil

	case CoverSampledMsg:
		return m.handleCoverSampled(msg), nil
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.quitting = true
		m.Stop()
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		playing := m.playback.Toggle()
		m.logger.Debug("playback toggled", "playing", playing)

	case key.Matches(msg, m.keys.back):
		m.playback.Nudge(-progressStep)

	case key.Matches(msg, m.keys.forward):
		m.playback.Nudge(progressStep)

	case key.Matches(msg, m.keys.rewind):
		m.playback.SetProgress(0)

	case key.Matches(msg, m.keys.prev), key.Matches(msg, m.keys.next):
		// skipping is up to whoever selects tracks
		m.logger.Debug("skip requested", "key", msg.String())

	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleTrackChange starts exactly one sampling pass when the cover
// reference changes. Bumping the generation orphans any pass still in flight.
func (m Model) handleTrackChange(newTrack *track.Info) (Model, tea.Cmd) {
	m.track = newTrack

	ref := newTrack.Cover()
	if ref == m.coverRef {
		return m, nil
	}

	m.coverRef = ref
	m.generation++
	m.image = nil

	if ref == "" {
		m.state = SampleIdle
		return m, nil
	}

	m.state = SampleLoading
	m.logger.Debug("sampling cover", "ref", ref, "generation", m.generation)

	return m, m.sampleCoverCmd(m.generation, ref)
}

func (m Model) handleCoverSampled(msg CoverSampledMsg) Model {
	if msg.Generation != m.generation {
		m.logger.Debug("discarding stale cover sample", "ref", msg.Ref, "generation", msg.Generation, "current", m.generation)
		return m
	}

	if msg.Err != nil {
		m.state = SampleFailed
		if errors.Is(msg.Err, sampler.ErrNoSamples) {
			m.logger.Warn("cover too small to sample, keeping previous color", "ref", msg.Ref)
		} else {
			m.logger.Warn("color extraction failed", "ref", msg.Ref, "err", msg.Err)
		}
		return m
	}

	m.state = SampleSampled
	m.color = msg.Color
	m.image = msg.Image
	m.logger.Debug("cover sampled", "ref", msg.Ref, "color", colors.CSS(msg.Color))

	return m
}
