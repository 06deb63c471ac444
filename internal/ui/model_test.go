package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"karolbroda.com/coverglow/internal/artwork"
	"karolbroda.com/coverglow/internal/colors"
	"karolbroda.com/coverglow/internal/sampler"
	"karolbroda.com/coverglow/internal/source"
	"karolbroda.com/coverglow/internal/track"
)

// fakeSampler answers from a table and counts calls per ref.
type fakeSampler struct {
	mu     sync.Mutex
	colors map[string]sampler.Color
	calls  map[string]int
}

func newFakeSampler(table map[string]sampler.Color) *fakeSampler {
	return &fakeSampler{colors: table, calls: make(map[string]int)}
}

func (f *fakeSampler) Sample(ctx context.Context, ref string) (*artwork.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[ref]++

	c, ok := f.colors[ref]
	if !ok {
		return nil, &sampler.SamplingError{Ref: ref, Err: sampler.ErrPixelAccess}
	}
	return &artwork.Result{Ref: ref, Image: image.NewRGBA(image.Rect(0, 0, 4, 4)), Color: c}, nil
}

var (
	red  = sampler.Color{R: 200, G: 30, B: 30}
	blue = sampler.Color{R: 30, G: 30, B: 200}
)

func newTestModel(t *testing.T, fs *fakeSampler) (Model, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)

	return NewModel(ModelConfig{Sample: fs.Sample, Logger: logger, ShowArt: true}), &buf
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("expected ui.Model, got %T", next)
	}
	return model, cmd
}

func songWithCover(ref string) *track.Info {
	return &track.Info{Title: "Song " + ref, Artist: "Band", CoverRef: ref, DurationSecs: 200}
}

func TestNewModel(t *testing.T) {
	m := NewModel(ModelConfig{})

	if m.Color() != colors.MustParse(colors.DefaultBackground) {
		t.Errorf("expected default background, got %+v", m.Color())
	}
	if m.SampleState() != SampleIdle {
		t.Errorf("expected idle, got %v", m.SampleState())
	}
	if m.Init() != nil {
		t.Error("model without a source should not listen for tracks")
	}

	custom := sampler.Color{R: 1, G: 2, B: 3}
	if NewModel(ModelConfig{DefaultColor: &custom}).Color() != custom {
		t.Error("expected configured default color")
	}
}

func TestCoverSampling(t *testing.T) {
	t.Run("SampledReplacesColor", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
		m, _ := newTestModel(t, fs)

		m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		if cmd == nil {
			t.Fatal("expected a sampling command")
		}
		if m.SampleState() != SampleLoading {
			t.Errorf("expected loading, got %v", m.SampleState())
		}

		m, _ = update(t, m, cmd())
		if m.SampleState() != SampleSampled {
			t.Errorf("expected sampled, got %v", m.SampleState())
		}
		if m.Color() != red {
			t.Errorf("expected red, got %+v", m.Color())
		}
		if m.Image() == nil {
			t.Error("expected cover image to be kept")
		}
	})

	t.Run("NewCoverRecomputes", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red, "b.png": blue})
		m, _ := newTestModel(t, fs)

		m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, _ = update(t, m, cmd())

		m, cmd = update(t, m, TrackChangedMsg{Track: songWithCover("b.png")})
		if cmd == nil {
			t.Fatal("expected a new sampling pass")
		}
		m, _ = update(t, m, cmd())

		if m.Color() != blue {
			t.Errorf("expected blue after cover change, got %+v", m.Color())
		}
		if fs.calls["a.png"] != 1 || fs.calls["b.png"] != 1 {
			t.Errorf("expected exactly one pass per cover, got %v", fs.calls)
		}
	})

	t.Run("SameCoverSkipsPass", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
		m, _ := newTestModel(t, fs)

		m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, _ = update(t, m, cmd())
		gen := m.Generation()

		other := songWithCover("a.png")
		other.Title = "B-side"
		m, cmd = update(t, m, TrackChangedMsg{Track: other})
		if cmd != nil {
			t.Error("same cover should not start another pass")
		}
		if m.Generation() != gen {
			t.Error("generation should not move without a cover change")
		}
		if m.Track().Title != "B-side" {
			t.Error("track should still be replaced")
		}
	})

	t.Run("StaleResultDiscarded", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red, "b.png": blue})
		m, logs := newTestModel(t, fs)

		m, cmdA := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, cmdB := update(t, m, TrackChangedMsg{Track: songWithCover("b.png")})

		// the newer pass finishes first, then the superseded one lands
		m, _ = update(t, m, cmdB())
		m, _ = update(t, m, cmdA())

		if m.Color() != blue {
			t.Errorf("stale result overwrote newer color: got %+v", m.Color())
		}
		if m.SampleState() != SampleSampled {
			t.Errorf("expected sampled, got %v", m.SampleState())
		}
		if !strings.Contains(logs.String(), "discarding stale cover sample") {
			t.Error("expected stale result to be logged")
		}
	})

	t.Run("StaleResultWhileLoading", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red, "b.png": blue})
		m, _ := newTestModel(t, fs)

		m, cmdA := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, _ = update(t, m, TrackChangedMsg{Track: songWithCover("b.png")})
		m, _ = update(t, m, cmdA())

		if m.Color() != colors.MustParse(colors.DefaultBackground) {
			t.Errorf("superseded pass should not apply, got %+v", m.Color())
		}
		if m.SampleState() != SampleLoading {
			t.Errorf("expected still loading, got %v", m.SampleState())
		}
	})

	t.Run("FailureKeepsColor", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
		m, logs := newTestModel(t, fs)

		m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, _ = update(t, m, cmd())

		m, cmd = update(t, m, TrackChangedMsg{Track: songWithCover("blocked.png")})
		m, followup := update(t, m, cmd())

		if followup != nil {
			t.Error("failure should not produce follow-up commands")
		}
		if m.Color() != red {
			t.Errorf("failed pass should keep previous color, got %+v", m.Color())
		}
		if m.SampleState() != SampleFailed {
			t.Errorf("expected failed, got %v", m.SampleState())
		}
		if !strings.Contains(logs.String(), "color extraction failed") {
			t.Error("expected failure to be logged")
		}
	})

	t.Run("UndersizedCoverKeepsColor", func(t *testing.T) {
		fs := newFakeSampler(nil)
		m, logs := newTestModel(t, fs)

		m, _ = update(t, m, TrackChangedMsg{Track: songWithCover("tiny.png")})
		m, _ = update(t, m, CoverSampledMsg{
			Generation: m.Generation(),
			Ref:        "tiny.png",
			Err:        &sampler.SamplingError{Ref: "tiny.png", Err: sampler.ErrNoSamples},
		})

		if m.Color() != colors.MustParse(colors.DefaultBackground) {
			t.Errorf("expected default color, got %+v", m.Color())
		}
		if m.SampleState() != SampleFailed {
			t.Errorf("expected failed, got %v", m.SampleState())
		}
		if !strings.Contains(logs.String(), "cover too small") {
			t.Error("expected undersized cover to be logged")
		}
	})

	t.Run("NoCover", func(t *testing.T) {
		fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
		m, _ := newTestModel(t, fs)

		m, cmdA := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("")})
		if cmd != nil {
			t.Error("track without cover should not start a pass")
		}
		if m.SampleState() != SampleIdle {
			t.Errorf("expected idle, got %v", m.SampleState())
		}

		m, _ = update(t, m, cmdA())
		if m.Color() != colors.MustParse(colors.DefaultBackground) {
			t.Error("pass for a replaced cover should be discarded")
		}
	})
}

func TestPlaybackKeys(t *testing.T) {
	fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
	m, _ := newTestModel(t, fs)

	m, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
	m, _ = update(t, m, cmd())

	t.Run("ToggleFlipsOnce", func(t *testing.T) {
		toggled, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		if cmd != nil {
			t.Error("toggle should not produce commands")
		}
		if !toggled.Playback().Playing {
			t.Error("expected playing after one toggle")
		}
		if toggled.Color() != m.Color() || toggled.Generation() != m.Generation() {
			t.Error("toggle must not touch sampling state")
		}

		again, _ := update(t, toggled, tea.KeyMsg{Type: tea.KeyEnter})
		if again.Playback().Playing {
			t.Error("expected paused after second toggle")
		}
	})

	t.Run("Progress", func(t *testing.T) {
		moved, _ := update(t, m, tea.KeyMsg{Type: tea.KeyRight})
		moved, _ = update(t, moved, tea.KeyMsg{Type: tea.KeyRight})
		if moved.Playback().Progress != 10 {
			t.Errorf("expected 10%%, got %v", moved.Playback().Progress)
		}

		moved, _ = update(t, moved, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("0")})
		if moved.Playback().Progress != 0 {
			t.Errorf("expected reset to 0, got %v", moved.Playback().Progress)
		}

		moved, _ = update(t, moved, tea.KeyMsg{Type: tea.KeyLeft})
		if moved.Playback().Progress != 0 {
			t.Errorf("progress should not go below 0, got %v", moved.Playback().Progress)
		}
	})

	t.Run("SkipIsInert", func(t *testing.T) {
		skipped, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
		if cmd != nil || skipped.Track() != m.Track() {
			t.Error("skip should not change the track")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		quit, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		if cmd == nil || !quit.IsQuitting() {
			t.Fatal("expected quit")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if quit.View() != "" {
			t.Error("quitting model should render nothing")
		}
	})
}

func TestSourceTracks(t *testing.T) {
	fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
	src := source.NewStatic(songWithCover("a.png"))
	if err := src.Start(context.Background()); err != nil {
		t.Fatalf("failed to start source: %v", err)
	}

	m := NewModel(ModelConfig{Source: src, Sample: fs.Sample})
	listen := m.Init()
	if listen == nil {
		t.Fatal("expected to listen for tracks")
	}

	m, cmd := update(t, m, listen())
	if m.Track() == nil || m.Track().CoverRef != "a.png" {
		t.Fatalf("expected track from source, got %+v", m.Track())
	}
	if m.SampleState() != SampleLoading || cmd == nil {
		t.Error("expected sampling to start for the source track")
	}

	src.Stop()
	if _, ok := m.listenForTracks()().(sourceClosedMsg); !ok {
		t.Error("expected closed source to be reported")
	}
}

func TestView(t *testing.T) {
	fs := newFakeSampler(map[string]sampler.Color{"a.png": red})
	m, _ := newTestModel(t, fs)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 30})

	t.Run("Waiting", func(t *testing.T) {
		out := m.View()
		if !strings.Contains(out, "awaiting track") {
			t.Error("expected waiting text")
		}
		if got := len(strings.Split(out, "\n")); got != 30 {
			t.Errorf("expected 30 lines, got %d", got)
		}
	})

	t.Run("Player", func(t *testing.T) {
		loaded, cmd := update(t, m, TrackChangedMsg{Track: songWithCover("a.png")})
		if !strings.Contains(loaded.View(), "sampling cover") {
			t.Error("expected loading hint")
		}

		loaded, _ = update(t, loaded, cmd())
		out := loaded.View()
		for _, want := range []string{"Song a.png", "Band", "▶", "⏮", "⏭", "paused · rgb(200, 30, 30)", "0:00", "3:20"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in view", want)
			}
		}

		playing, _ := update(t, loaded, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		if out := playing.View(); !strings.Contains(out, "⏸") || !strings.Contains(out, "playing ·") {
			t.Error("expected pause icon and playing status while playing")
		}
	})

	t.Run("Failed", func(t *testing.T) {
		failed, _ := update(t, m, TrackChangedMsg{Track: songWithCover("x.png")})
		failed, _ = update(t, failed, CoverSampledMsg{Generation: failed.Generation(), Err: errors.New("tainted")})
		if !strings.Contains(failed.View(), "cover unavailable") {
			t.Error("expected failure hint")
		}
	})

	t.Run("Tiny", func(t *testing.T) {
		tiny, _ := update(t, m, tea.WindowSizeMsg{Width: 10, Height: 3})
		tiny, _ = update(t, tiny, TrackChangedMsg{Track: songWithCover("")})
		if got := len(strings.Split(tiny.View(), "\n")); got != 3 {
			t.Errorf("expected 3 lines, got %d", got)
		}
	})
}

func TestAccent(t *testing.T) {
	cover := sampler.Color{R: 40, G: 10, B: 10}
	light := sampler.Color{R: 0xFF, G: 0xFF, B: 0xFF}

	t.Run("DarkRowLiftsCover", func(t *testing.T) {
		got := accent(cover, sampler.Color{R: 5, G: 5, B: 5}, light)
		if colors.Lightness(got) < accentMinLightness-5 {
			t.Errorf("expected lifted accent, got %s (L=%.1f)", colors.Hex(got), colors.Lightness(got))
		}
		if got.R <= got.G || got.R <= got.B {
			t.Errorf("lifted accent should keep the cover's hue, got %s", colors.Hex(got))
		}
	})

	t.Run("BrightRowUsesText", func(t *testing.T) {
		fg := sampler.Color{R: 0x11, G: 0x11, B: 0x11}
		if got := accent(cover, sampler.Color{R: 230, G: 230, B: 230}, fg); got != fg {
			t.Errorf("expected text color on bright rows, got %s", colors.Hex(got))
		}
	})
}

func TestTruncate(t *testing.T) {
	if truncate("hello", 10) != "hello" {
		t.Error("short strings should be unchanged")
	}
	if truncate("hello world", 6) != "hello…" {
		t.Errorf("unexpected truncation %q", truncate("hello world", 6))
	}
	if truncate("hello", 0) != "" {
		t.Error("zero width should be empty")
	}
}
