package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"

	"gopkg.in/yaml.v3"
)

// Fixture es el contenido de un archivo seed YAML (dev/demo y tests).
type Fixture struct {
	Devices     []DeviceRow     `yaml:"devices"`
	Assignments []AssignmentRow `yaml:"assignments"`
	Dosages     []DosageRow     `yaml:"dosages"`
}

type DeviceRow struct {
	ID              string    `yaml:"id"`
	MACAddress      string    `yaml:"mac_address"`
	FirmwareVersion *string   `yaml:"firmware_version"`
	IsActive        *bool     `yaml:"is_active"`
	CreatedAt       time.Time `yaml:"created_at"`
}

type AssignmentRow struct {
	UserID   string  `yaml:"user_id"`
	DeviceID string  `yaml:"device_id"`
	Role     *string `yaml:"role"`
}

type DosageRow struct {
	ID        string     `yaml:"id"`
	DeviceID  string     `yaml:"device_id"`
	StartTime time.Time  `yaml:"dosage_start_time"`
	EndTime   *time.Time `yaml:"dosage_end_time"`
	Status    *string    `yaml:"status_log"`
}

func (r DosageRow) Event() dosages.DosageEvent {
	return dosages.DosageEvent{
		ID:          strings.TrimSpace(r.ID),
		DeviceID:    strings.TrimSpace(r.DeviceID),
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		StatusLabel: r.Status,
	}
}

func Load(path string) (Fixture, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(b)
}

// Parse decodifica y valida: asignaciones a devices inexistentes o dosis inválidas fallan.
func Parse(b []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Fixture{}, fmt.Errorf("seed: decode: %w", err)
	}

	known := make(map[string]struct{}, len(f.Devices))
	for i, d := range f.Devices {
		if strings.TrimSpace(d.ID) == "" {
			return Fixture{}, fmt.Errorf("seed: devices[%d]: id required", i)
		}
		known[strings.TrimSpace(d.ID)] = struct{}{}
	}
	for i, a := range f.Assignments {
		if strings.TrimSpace(a.UserID) == "" {
			return Fixture{}, fmt.Errorf("seed: assignments[%d]: user_id required", i)
		}
		if _, ok := known[strings.TrimSpace(a.DeviceID)]; !ok {
			return Fixture{}, fmt.Errorf("seed: assignments[%d]: unknown device %q", i, a.DeviceID)
		}
	}
	for i, d := range f.Dosages {
		if err := d.Event().Validate(); err != nil {
			return Fixture{}, fmt.Errorf("seed: dosages[%d]: %w", i, err)
		}
	}
	return f, nil
}

type DeviceWriter interface {
	PutDevice(ctx context.Context, d devices.Device) error
	Assign(ctx context.Context, a devices.Assignment) error
}

type DosageWriter interface {
	Insert(ctx context.Context, e dosages.DosageEvent) error
}

// Apply carga el fixture en los stores dados.
func (f Fixture) Apply(ctx context.Context, dw DeviceWriter, ew DosageWriter) error {
	for _, d := range f.Devices {
		if err := dw.PutDevice(ctx, devices.Device{
			ID:              strings.TrimSpace(d.ID),
			MACAddress:      strings.TrimSpace(d.MACAddress),
			FirmwareVersion: d.FirmwareVersion,
			IsActive:        d.IsActive,
			CreatedAt:       d.CreatedAt,
		}); err != nil {
			return fmt.Errorf("seed: device %s: %w", d.ID, err)
		}
	}
	for _, a := range f.Assignments {
		if err := dw.Assign(ctx, devices.Assignment{
			UserID:   strings.TrimSpace(a.UserID),
			DeviceID: strings.TrimSpace(a.DeviceID),
			Role:     a.Role,
		}); err != nil {
			return fmt.Errorf("seed: assignment %s/%s: %w", a.UserID, a.DeviceID, err)
		}
	}
	for _, d := range f.Dosages {
		if err := ew.Insert(ctx, d.Event()); err != nil {
			return fmt.Errorf("seed: dosage %s: %w", d.ID, err)
		}
	}
	return nil
}
