// Package dispatch turns field transitions into at-most-once split events.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"bosplit/ledger"
	"bosplit/tracker"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	ErrInvalidRule   = errors.New("invalid rule")
	ErrDuplicateRule = errors.New("duplicate rule key")
)

// Rule maps one field transition to a ledger key. Slot selects a collection
// element and is empty for single entities. The rule fires if any of its
// Settings is enabled; no Settings means the key itself.
type Rule struct {
	Key      string
	Entity   string
	Slot     string
	Field    string
	Settings []string
	When     Predicate
}

// Event is one milestone that was recorded in the ledger
type Event struct {
	Key        string
	Epoch      string
	Transition tracker.Transition
}

func (e Event) String() string {
	return fmt.Sprintf("%s (%s)", e.Key, e.Transition)
}

// Notifier receives events after they are recorded. Delivery is fire and
// forget.
type Notifier interface {
	Notify(ev Event)
}

type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) {
	f(ev)
}

// Config answers whether a split setting is enabled
type Config interface {
	Enabled(key string) bool
}

type match struct {
	entity string
	slot   string
	field  string
}

type Dispatcher struct {
	rules    map[match][]Rule
	keys     []string
	notifier Notifier
	log      *logger.Logger
}

func New(rules []Rule, notifier Notifier) (*Dispatcher, error) {
	d := &Dispatcher{
		rules:    make(map[match][]Rule),
		notifier: notifier,
		log:      logger.NewLogger(coloransi.Color(coloransi.Black, coloransi.ColorLimeGreen, "dispatch")),
	}

	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Key == "" || r.Entity == "" || r.Field == "" || r.When == nil {
			return nil, fmt.Errorf("rule %q: %w", r.Key, ErrInvalidRule)
		}
		if seen[r.Key] {
			return nil, fmt.Errorf("rule %q: %w", r.Key, ErrDuplicateRule)
		}
		seen[r.Key] = true

		if len(r.Settings) == 0 {
			r.Settings = []string{r.Key}
		}

		m := match{entity: r.Entity, slot: r.Slot, field: r.Field}
		d.rules[m] = append(d.rules[m], r)
		d.keys = append(d.keys, r.Key)
	}

	return d, nil
}

// Keys returns every rule key in declaration order
func (d *Dispatcher) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Dispatch evaluates transitions in order. For each matching rule whose
// predicate holds, which is enabled in cfg and which the ledger has not
// seen, the key is recorded and then announced. A key that cannot be
// recorded is not announced.
func (d *Dispatcher) Dispatch(ctx context.Context, transitions []tracker.Transition, cfg Config, l *ledger.Ledger) []Event {
	var events []Event

	for _, t := range transitions {
		for _, r := range d.rules[match{entity: t.Entity, slot: t.Key, field: t.Field}] {
			if !r.When(t.Previous, t.Current) {
				continue
			}
			if !enabled(cfg, r.Settings) {
				d.log.Debugln("split", r.Key, "disabled")
				continue
			}
			if !l.ShouldFire(r.Key) {
				d.log.Debugln("split", r.Key, "already fired")
				continue
			}
			if err := l.RecordFired(ctx, r.Key); err != nil {
				d.log.Warn("Dropping split", r.Key, "not recorded:", err)
				continue
			}

			ev := Event{Key: r.Key, Epoch: l.Epoch(), Transition: t}
			d.log.Infoln("Split", ev)
			if d.notifier != nil {
				d.notifier.Notify(ev)
			}
			events = append(events, ev)
		}
	}

	return events
}

func enabled(cfg Config, settings []string) bool {
	for _, s := range settings {
		if cfg.Enabled(s) {
			return true
		}
	}
	return false
}
