package dashboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/domain/profiles"
	"dosage-dashboard/internal/ports/auth"

	"golang.org/x/sync/errgroup"
)

const (
	RecentLimit = 10
	weekWindow  = 7 * 24 * time.Hour
)

var ErrInvalidInput = errors.New("invalid input")

type DeviceResolver interface {
	Resolve(ctx context.Context, userID string) ([]string, error)
}

type DeviceLister interface {
	ListByIDs(ctx context.Context, ids []string) ([]devices.Device, error)
}

// ProfileReader devuelve el perfil guardado (vacío si no hay fila).
type ProfileReader interface {
	Get(ctx context.Context, userID string) (profiles.Profile, error)
}

type DosageStats interface {
	Count(ctx context.Context, f dosages.Filter) (int, error)
	Latest(ctx context.Context, deviceIDs []string, limit int) ([]dosages.DosageEvent, error)
}

// Summary es la portada del cuidador.
type Summary struct {
	DisplayName string

	LastDose   *dosages.DosageEvent
	TodayCount int
	WeekCount  int

	ActiveDevices int
	TotalDevices  int

	Recent []dosages.DosageEvent
}

type Options struct {
	Location *time.Location
	Now      func() time.Time
	// Profiles es opcional; sin él el nombre sale del token.
	Profiles ProfileReader
}

type Service struct {
	resolver DeviceResolver
	devices  DeviceLister
	stats    DosageStats
	profiles ProfileReader
	loc      *time.Location
	now      func() time.Time
}

func NewService(resolver DeviceResolver, devs DeviceLister, stats DosageStats, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		resolver: resolver,
		devices:  devs,
		stats:    stats,
		profiles: opts.Profiles,
		loc:      opts.Location,
		now:      opts.Now,
	}
}

// Summary arma la portada. Sin devices no consulta medical_raw.
func (s *Service) Summary(ctx context.Context, claims auth.Claims) (Summary, error) {
	userID := strings.TrimSpace(claims.UserID)
	if userID == "" {
		return Summary{}, ErrInvalidInput
	}

	var stored profiles.Profile
	if s.profiles != nil {
		p, err := s.profiles.Get(ctx, userID)
		if err != nil {
			return Summary{}, &dosages.FetchError{Op: "profile", Err: err}
		}
		stored = p
	}

	out := Summary{
		DisplayName: profiles.DisplayName(stored, claims),
		Recent:      []dosages.DosageEvent{},
	}

	ids, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	out.TotalDevices = len(ids)

	now := s.now().In(s.loc)
	today := dosages.StartOfDay(now, s.loc)
	weekAgo := now.Add(-weekWindow)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		devs, err := s.devices.ListByIDs(gctx, ids)
		if err != nil {
			return &dosages.FetchError{Op: "devices", Err: err}
		}
		for _, d := range devs {
			if d.Active() {
				out.ActiveDevices++
			}
		}
		return nil
	})
	g.Go(func() error {
		recent, err := s.stats.Latest(gctx, ids, RecentLimit)
		if err != nil {
			return &dosages.FetchError{Op: "latest", Err: err}
		}
		if recent != nil {
			out.Recent = recent
		}
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.Count(gctx, dosages.Filter{DeviceIDs: ids, From: today})
		if err != nil {
			return &dosages.FetchError{Op: "count_today", Err: err}
		}
		out.TodayCount = n
		return nil
	})
	g.Go(func() error {
		n, err := s.stats.Count(gctx, dosages.Filter{DeviceIDs: ids, From: weekAgo})
		if err != nil {
			return &dosages.FetchError{Op: "count_week", Err: err}
		}
		out.WeekCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	if len(out.Recent) > 0 {
		last := out.Recent[0]
		out.LastDose = &last
	}
	return out, nil
}
