// Package schedule triggers dashboard refreshes on a cron schedule.
//
// Auto refresh is opt-in. The trigger only asks for a refresh; whether one
// actually starts (for example, not while a refresh is already loading) is
// decided by the caller.
package schedule

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// parser accepts standard 5-field specs, an optional leading seconds field
// and descriptors such as "@every 5m" or "@hourly".
//
//nolint:gochecknoglobals // Stateless parser shared by ParseSpec and New.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ErrEmptySpec is returned when no schedule is configured.
var ErrEmptySpec = errors.New("empty schedule spec")

// ParseSpec validates a cron spec.
func ParseSpec(spec string) (cron.Schedule, error) {
	if spec == "" {
		return nil, ErrEmptySpec
	}
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Trigger runs fire on a cron schedule until stopped.
type Trigger struct {
	cron   *cron.Cron
	spec   string
	logger zerolog.Logger
}

// New registers fire under spec. The trigger is idle until Start.
func New(spec string, fire func(), logger zerolog.Logger) (*Trigger, error) {
	if fire == nil {
		return nil, errors.New("schedule: nil trigger func")
	}
	if _, err := ParseSpec(spec); err != nil {
		return nil, err
	}

	c := cron.New(cron.WithParser(parser))
	t := &Trigger{cron: c, spec: spec, logger: logger}

	if _, err := c.AddFunc(spec, func() {
		t.logger.Debug().Str("schedule", spec).Msg("scheduled refresh")
		fire()
	}); err != nil {
		return nil, fmt.Errorf("register refresh: %w", err)
	}
	return t, nil
}

// Start begins firing in the background.
func (t *Trigger) Start() {
	t.logger.Info().Str("schedule", t.spec).Msg("auto refresh enabled")
	t.cron.Start()
}

// Stop halts the schedule and waits for a running fire to return.
func (t *Trigger) Stop() {
	<-t.cron.Stop().Done()
}

// Spec returns the cron spec the trigger was built with.
func (t *Trigger) Spec() string {
	return t.spec
}
