package devices

import (
	"context"
	"strings"

	"dosage-dashboard/internal/domain/dosages"

	"golang.org/x/sync/errgroup"
)

// maxStatsFanout limita las consultas por device en paralelo.
const maxStatsFanout = 8

type Service struct {
	repo  Repository
	stats DosageStats
}

func NewService(repo Repository, stats DosageStats) *Service {
	return &Service{repo: repo, stats: stats}
}

// Overview arma la vista de dispositivos: rol, última actividad y total de dosis por device.
func (s *Service) Overview(ctx context.Context, userID string) ([]Summary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}

	assignments, err := s.repo.ListAssignments(ctx, userID)
	if err != nil {
		return nil, &ResolutionError{UserID: userID, Err: err}
	}
	if len(assignments) == 0 {
		return []Summary{}, nil
	}

	roles := make(map[string]string, len(assignments))
	ids := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if _, dup := roles[a.DeviceID]; dup {
			continue
		}
		roles[a.DeviceID] = a.RoleOrDefault()
		ids = append(ids, a.DeviceID)
	}

	devs, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, len(devs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStatsFanout)
	for i, d := range devs {
		out[i] = Summary{Device: d, Role: roles[d.ID]}
		g.Go(func() error {
			return s.fillStats(gctx, &out[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) fillStats(ctx context.Context, sum *Summary) error {
	ids := []string{sum.Device.ID}

	latest, err := s.stats.Latest(ctx, ids, 1)
	if err != nil {
		return &dosages.FetchError{Op: "latest", Err: err}
	}
	if len(latest) > 0 {
		start := latest[0].StartTime
		sum.LastActivity = &start
		sum.LastStatus = latest[0].StatusLabel
	}

	n, err := s.stats.Count(ctx, dosages.Filter{DeviceIDs: ids})
	if err != nil {
		return &dosages.FetchError{Op: "count", Err: err}
	}
	sum.TotalDoses = n
	return nil
}
