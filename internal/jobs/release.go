// Package jobs holds the background work that runs beside the HTTP server.
package jobs

import (
	"context"
	"fmt"

	"spacebook/config"
	"spacebook/infras/otel"
	bookingService "spacebook/internal/domains/booking/service"
	"spacebook/shared/constant"
	"spacebook/shared/principal"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

type Scheduler struct {
	cron     *cron.Cron
	cfg      *config.Config
	bookings bookingService.Booking
	otel     otel.Otel
}

func New(cfg *config.Config, bookings bookingService.Booking, otel otel.Otel) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		bookings: bookings,
		otel:     otel,
	}
}

// Start registers the no-show release on its schedule. It is a no-op when
// the release is disabled.
func (s *Scheduler) Start() error {
	if !s.cfg.Booking.ReleaseEnable {
		log.Info().Msg("No-show release is disabled")

		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.Booking.ReleaseSchedule, func() { s.ReleaseNoShows(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule no-show release: %w", err)
	}

	s.cron.Start()

	log.Info().Str("schedule", s.cfg.Booking.ReleaseSchedule).Msg("No-show release scheduled")

	return nil
}

// Stop waits for a running release to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ReleaseNoShows runs one release pass as the system principal.
func (s *Scheduler) ReleaseNoShows(ctx context.Context) int {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelJobScopeName, constant.OtelJobScopeName+".ReleaseNoShows")
	defer scope.End()

	released, err := s.bookings.ReleaseNoShows(principal.WithContext(ctx, principal.System()))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to release no-show bookings")

		return released
	}

	scope.SetAttribute("booking.released", released)

	if released > 0 {
		log.Info().Int("released", released).Msg("Released no-show bookings")
	}

	return released
}
