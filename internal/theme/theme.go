// Package theme keeps the dark/light preference. It has its own storage key
// and is independent of the task collection.
package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/storage"
)

const DefaultKey = "theme"

var ErrUnknownTheme = errors.New("theme must be dark or light")

type Preference struct {
	mu      sync.Mutex
	kv      storage.KV
	key     string
	current models.Theme
}

func New(kv storage.KV, key string) *Preference {
	if key == "" {
		key = DefaultKey
	}
	return &Preference{kv: kv, key: key, current: models.ThemeLight}
}

// Load reads the stored flag once at startup. Anything other than "dark",
// including a read failure, means light.
func (p *Preference) Load(ctx context.Context) models.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()

	raw, _, err := p.kv.Get(ctx, p.key)
	if err != nil {
		log.WithError(err).Warn("read theme preference, using light")
	}
	p.current = models.ParseTheme(raw)
	return p.current
}

func (p *Preference) Current() models.Theme {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Preference) Set(ctx context.Context, t models.Theme) error {
	if t != models.ThemeDark && t != models.ThemeLight {
		return fmt.Errorf("%w: got %q", ErrUnknownTheme, t)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.setLocked(ctx, t)
}

func (p *Preference) Toggle(ctx context.Context) (models.Theme, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.current.Toggle()
	if err := p.setLocked(ctx, next); err != nil {
		return p.current, err
	}
	return next, nil
}

func (p *Preference) setLocked(ctx context.Context, t models.Theme) error {
	if err := p.kv.Set(ctx, p.key, string(t)); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	p.current = t
	return nil
}
