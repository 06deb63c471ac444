package ui

import (
	"context"
	"image"
	"io"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"karolbroda.com/coverglow/internal/artwork"
	"karolbroda.com/coverglow/internal/colors"
	"karolbroda.com/coverglow/internal/playback"
	"karolbroda.com/coverglow/internal/sampler"
	"karolbroda.com/coverglow/internal/source"
	"karolbroda.com/coverglow/internal/terminal"
	"karolbroda.com/coverglow/internal/track"
)

// SampleState tracks the sampling pass for the current cover.
type SampleState int

const (
	SampleIdle SampleState = iota
	SampleLoading
	SampleSampled
	SampleFailed
)

func (s SampleState) String() string {
	switch s {
	case SampleLoading:
		return "loading"
	case SampleSampled:
		return "sampled"
	case SampleFailed:
		return "failed"
	default:
		return "idle"
	}
}

// SampleFunc loads the cover behind ref and derives its color.
type SampleFunc func(ctx context.Context, ref string) (*artwork.Result, error)

// TrackChangedMsg replaces the displayed track.
type TrackChangedMsg struct {
	Track *track.Info
}

// CoverSampledMsg carries the outcome of one sampling pass. Generation ties
// it to the cover change that started it.
type CoverSampledMsg struct {
	Generation uint64
	Ref        string
	Image      image.Image
	Color      sampler.Color
	Err        error
}

type sourceTrackMsg struct {
	track *track.Info
}

type sourceClosedMsg struct{}

type ModelConfig struct {
	Source       source.Source
	Sample       SampleFunc
	DefaultColor *sampler.Color
	ShowArt      bool
	TermCaps     *terminal.Capabilities
	Logger       *log.Logger
}

type Model struct {
	source   source.Source
	sample   SampleFunc
	showArt  bool
	termCaps *terminal.Capabilities
	logger   *log.Logger

	track      *track.Info
	coverRef   string
	generation uint64
	state      SampleState
	color      sampler.Color
	image      image.Image
	playback   playback.State

	keys     keyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

func NewModel(cfg ModelConfig) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sample := cfg.Sample
	if sample == nil {
		sample = func(ctx context.Context, ref string) (*artwork.Result, error) {
			return artwork.Load(ctx, ref, artwork.Options{})
		}
	}

	color := colors.MustParse(colors.DefaultBackground)
	if cfg.DefaultColor != nil {
		color = *cfg.DefaultColor
	}

	return Model{
		source:   cfg.Source,
		sample:   sample,
		showArt:  cfg.ShowArt,
		termCaps: cfg.TermCaps,
		logger:   logger,
		color:    color,
		keys:     newKeyMap(),
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.listenForTracks()
}

func (m Model) listenForTracks() tea.Cmd {
	if m.source == nil {
		return nil
	}

	events := m.source.Events()
	return func() tea.Msg {
		trk, ok := <-events
		if !ok {
			return sourceClosedMsg{}
		}
		return sourceTrackMsg{track: trk}
	}
}

// sampleCoverCmd runs one sampling pass off the update loop.
func (m Model) sampleCoverCmd(gen uint64, ref string) tea.Cmd {
	sample := m.sample
	return func() tea.Msg {
		res, err := sample(context.Background(), ref)
		if err != nil {
			return CoverSampledMsg{Generation: gen, Ref: ref, Err: err}
		}
		return CoverSampledMsg{
			Generation: gen,
			Ref:        ref,
			Image:      res.Image,
			Color:      res.Color,
		}
	}
}

func (m Model) Track() *track.Info       { return m.track }
func (m Model) Color() sampler.Color     { return m.color }
func (m Model) SampleState() SampleState { return m.state }
func (m Model) Generation() uint64       { return m.generation }
func (m Model) Playback() playback.State { return m.playback }
func (m Model) Image() image.Image       { return m.image }
func (m Model) IsQuitting() bool         { return m.quitting }

func (m *Model) Stop() {
	if m.source != nil {
		m.source.Stop()
	}
}
