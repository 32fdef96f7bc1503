// Package gate puts adult search sources behind the parental control PIN.
package gate

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mcao2/button-layout/internal/host"
	"github.com/mcao2/button-layout/internal/layout"
)

// KeyParentalControl is the stored switch that enables the gate.
const KeyParentalControl = "parental_control"

// AuthCardType marks the placeholder card shown instead of results.
const AuthCardType = "sisi_auth_required"

var (
	ErrWrongPIN = errors.New("wrong PIN")
	ErrNoPIN    = errors.New("no PIN configured")
)

// Titles of the adult search source in each shipped language.
var protectedTitles = []string{"Клубничка", "Strawberry", "Полуничка", "草莓"}

// IsProtected reports whether a search source title needs the PIN.
func IsProtected(title string) bool {
	for _, t := range protectedTitles {
		if t == title {
			return true
		}
	}
	return false
}

// AuthCard is the placeholder returned while the gate is locked.
func AuthCard() host.Card {
	return host.Card{
		ID:         "sisi_auth_card",
		Title:      "Authorization required",
		Subtitle:   "Click to enter PIN code",
		Overview:   "Enter PIN code to access content",
		CustomType: AuthCardType,
	}
}

// IsAuthCard reports whether c is the placeholder card.
func IsAuthCard(c host.Card) bool {
	return c.CustomType == AuthCardType
}

// HashPIN returns the hex SHA-256 digest stored in the config.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// Option configures a Gate
type Option func(*Gate)

// WithStore reads the parental control switch from store. Without a stored
// value the default passed to New applies.
func WithStore(store layout.Store) Option {
	return func(g *Gate) {
		g.store = store
	}
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Gate) {
		g.log = l
	}
}

// Gate holds the authorization shared by every protected source. It is
// safe for concurrent use.
type Gate struct {
	mu         sync.Mutex
	authorized bool
	pinHash    []byte
	enabled    bool
	store      layout.Store
	log        logrus.FieldLogger
}

// New creates a gate. pinSHA256 is the hex digest of the PIN; enabled is
// the switch used when the store holds none.
func New(pinSHA256 string, enabled bool, opts ...Option) (*Gate, error) {
	var hash []byte
	if pinSHA256 != "" {
		var err error
		hash, err = hex.DecodeString(strings.TrimSpace(pinSHA256))
		if err != nil || len(hash) != sha256.Size {
			return nil, fmt.Errorf("invalid PIN hash: expected %d hex bytes", sha256.Size)
		}
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	g := &Gate{pinHash: hash, enabled: enabled, log: discard}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Enabled reports whether parental control is switched on.
func (g *Gate) Enabled() bool {
	if g.store != nil {
		var on bool
		found, err := g.store.Get(KeyParentalControl, &on)
		if err != nil {
			g.log.WithError(err).Warn("reading parental control switch")
			return true
		}
		if found {
			return on
		}
	}
	return g.enabled
}

func (g *Gate) Authorized() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.authorized
}

// locked reports whether protected results must be withheld.
func (g *Gate) locked() bool {
	return g.Enabled() && !g.Authorized()
}

// Authorize checks pin and unlocks every protected source on success.
func (g *Gate) Authorize(pin string) error {
	if len(g.pinHash) == 0 {
		return ErrNoPIN
	}
	sum := sha256.Sum256([]byte(pin))
	if subtle.ConstantTimeCompare(sum[:], g.pinHash) != 1 {
		g.log.Warn("wrong parental control PIN")
		return ErrWrongPIN
	}

	g.mu.Lock()
	g.authorized = true
	g.mu.Unlock()
	g.log.Info("parental control unlocked")
	return nil
}

// Reset locks the gate again.
func (g *Gate) Reset() {
	g.mu.Lock()
	was := g.authorized
	g.authorized = false
	g.mu.Unlock()
	if was {
		g.log.Debug("parental control locked")
	}
}

// Follow locks the gate when the app exits or is destroyed and whenever the
// parental control switch is written. The returned func stops following.
func (g *Gate) Follow(l *host.Listener) (unfollow func()) {
	stopApp := l.Follow(host.ChannelApp, func(e host.Event) {
		if e.Type == host.TypeExit || e.Type == host.TypeDestroy {
			g.Reset()
		}
	})
	stopStorage := l.Follow(host.ChannelStorage, func(e host.Event) {
		if e.Type == host.TypeChange && e.Key == KeyParentalControl {
			g.Reset()
		}
	})
	return func() {
		stopApp()
		stopStorage()
	}
}

// Middleware guards protected sources registered in a host.Registry.
func (g *Gate) Middleware() host.Middleware {
	return func(src host.Source) host.Source {
		if !IsProtected(src.Title()) {
			return src
		}
		return &Guarded{source: src, gate: g}
	}
}

// Guarded is a protected source behind the gate
type Guarded struct {
	source host.Source
	gate   *Gate

	mu        sync.Mutex
	lastQuery *string
}

func (s *Guarded) Title() string {
	return s.source.Title()
}

// Search returns the wrapped source's results, or a single auth card while
// the gate is locked. The query is remembered either way.
func (s *Guarded) Search(ctx context.Context, query string) ([]host.Card, error) {
	s.mu.Lock()
	s.lastQuery = &query
	s.mu.Unlock()

	if s.gate.locked() {
		return []host.Card{AuthCard()}, nil
	}
	return s.source.Search(ctx, query)
}

// Unlock authorizes pin and re-runs the remembered query. A wrong PIN
// yields the auth card again together with ErrWrongPIN.
func (s *Guarded) Unlock(ctx context.Context, pin string) ([]host.Card, error) {
	if err := s.gate.Authorize(pin); err != nil {
		return []host.Card{AuthCard()}, err
	}

	s.mu.Lock()
	last := s.lastQuery
	s.mu.Unlock()
	if last == nil {
		return nil, nil
	}
	return s.source.Search(ctx, *last)
}
