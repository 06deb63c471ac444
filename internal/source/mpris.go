package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"

	"karolbroda.com/coverglow/internal/track"
)

const (
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"

	propertiesChanged = "org.freedesktop.DBus.Properties.PropertiesChanged"
)

// MPRIS follows the Metadata of one MPRIS player. Playback status and
// position are deliberately ignored.
type MPRIS struct {
	bus      *dbus.Conn
	service  string
	interval time.Duration
	logger   *log.Logger

	signals  chan *dbus.Signal
	events   chan *track.Info
	stopCh   chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	current *track.Info
}

func NewMPRIS(bus *dbus.Conn, service string, interval time.Duration, logger *log.Logger) (*MPRIS, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if service == "" {
		return nil, errors.New("empty mpris service name")
	}
	if logger == nil {
		logger = log.Default()
	}

	return &MPRIS{
		bus:      bus,
		service:  service,
		interval: interval,
		logger:   logger.With("source", "mpris", "service", service),
		events:   make(chan *track.Info, 16),
		stopCh:   make(chan struct{}),
	}, nil
}

func (m *MPRIS) Start(ctx context.Context) error {
	m.signals = make(chan *dbus.Signal, 10)
	m.bus.Signal(m.signals)

	match := fmt.Sprintf(
		"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
		m.service, mprisPath,
	)
	if err := m.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
		return fmt.Errorf("failed to add properties match: %w", err)
	}

	if err := m.poll(); err != nil {
		m.logger.Debug("no current track", "err", err)
	}

	go m.loop(ctx)

	return nil
}

func (m *MPRIS) Events() <-chan *track.Info {
	return m.events
}

func (m *MPRIS) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
		if m.signals != nil {
			m.bus.RemoveSignal(m.signals)
		}
	})
}

func (m *MPRIS) loop(ctx context.Context) {
	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case sig, ok := <-m.signals:
			if !ok {
				return
			}
			m.handleSignal(sig)
		case <-tick:
			// some players never emit PropertiesChanged
			if err := m.poll(); err != nil {
				m.logger.Debug("poll failed", "err", err)
			}
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		}
	}
}

// CurrentTrack reads the player's Metadata property.
func (m *MPRIS) CurrentTrack() (*track.Info, error) {
	prop, err := m.bus.Object(m.service, mprisPath).GetProperty(mprisPlayerIface + ".Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata property: %w", err)
	}

	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", prop.Value())
	}

	info := TrackFromMetadata(metadata)
	if !info.IsValid() {
		return nil, fmt.Errorf("missing title or artist in metadata (title=%q, artist=%q)", info.Title, info.Artist)
	}

	return info, nil
}

func (m *MPRIS) poll() error {
	info, err := m.CurrentTrack()
	if err != nil {
		return err
	}
	m.offer(info)
	return nil
}

func (m *MPRIS) handleSignal(sig *dbus.Signal) {
	if sig == nil || sig.Name != propertiesChanged || len(sig.Body) < 2 {
		return
	}

	iface, ok := sig.Body[0].(string)
	if !ok || iface != mprisPlayerIface {
		return
	}

	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	variant, exists := changed["Metadata"]
	if !exists {
		return
	}

	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		return
	}

	if info := TrackFromMetadata(metadata); info.IsValid() {
		m.offer(info)
	}
}

// offer emits info unless it is the track (and cover) already announced.
// Only the newest track matters to the widget, so when the channel is full
// the oldest pending track is dropped to make room.
func (m *MPRIS) offer(info *track.Info) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info.IsSameTrack(m.current) && info.SameCover(m.current) {
		return
	}

	for attempt := 0; attempt < 2; attempt++ {
		select {
		case m.events <- info:
			m.current = info
			return
		default:
		}

		select {
		case stale := <-m.events:
			m.logger.Debug("event channel full, dropping stale track", "title", stale.Title)
		default:
		}
	}

	// current stays untouched so the next poll retries this track
	m.logger.Warn("event channel full, track not delivered", "title", info.Title)
}

// TrackFromMetadata converts an MPRIS metadata map (xesam/mpris keys).
func TrackFromMetadata(metadata map[string]dbus.Variant) *track.Info {
	return &track.Info{
		Title:        metaString(metadata, "xesam:title"),
		Artist:       metaArtist(metadata, "xesam:artist"),
		Album:        metaString(metadata, "xesam:album"),
		CoverRef:     metaString(metadata, "mpris:artUrl"),
		TrackID:      metaTrackID(metadata, "mpris:trackid"),
		DurationSecs: metaDurationSecs(metadata, "mpris:length"),
	}
}

func metaValue(metadata map[string]dbus.Variant, key string) any {
	variant, exists := metadata[key]
	if !exists {
		return nil
	}
	return variant.Value()
}

func metaString(metadata map[string]dbus.Variant, key string) string {
	text, _ := metaValue(metadata, key).(string)
	return text
}

func metaArtist(metadata map[string]dbus.Variant, key string) string {
	switch typed := metaValue(metadata, key).(type) {
	case []string:
		return strings.Join(typed, ", ")
	case string:
		return typed
	}
	return ""
}

// trackid is an object path per the mpris interface, but some players send a string.
func metaTrackID(metadata map[string]dbus.Variant, key string) string {
	switch typed := metaValue(metadata, key).(type) {
	case dbus.ObjectPath:
		return string(typed)
	case string:
		return typed
	}
	return ""
}

func metaDurationSecs(metadata map[string]dbus.Variant, key string) int64 {
	switch typed := metaValue(metadata, key).(type) {
	case int64:
		if typed > 0 {
			return typed / 1_000_000
		}
	case uint64:
		return int64(typed / 1_000_000)
	}
	return 0
}

type Player struct {
	Service  string
	Identity string
}

// ListPlayers returns every MPRIS service on the bus.
func ListPlayers(bus *dbus.Conn) ([]Player, error) {
	var names []string
	if err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, fmt.Errorf("failed to list dbus names: %w", err)
	}

	var players []Player
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		players = append(players, Player{Service: name, Identity: playerIdentity(bus, name)})
	}

	return players, nil
}

func playerIdentity(bus *dbus.Conn, service string) string {
	variant, err := bus.Object(service, mprisPath).GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}
	identity, _ := variant.Value().(string)
	return identity
}
