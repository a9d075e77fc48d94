package devices

import "time"

// DefaultRole se asume cuando la asignación no trae rol.
const DefaultRole = "Owner"

type Device struct {
	ID              string
	MACAddress      string
	FirmwareVersion *string
	IsActive        *bool
	CreatedAt       time.Time
}

// Active: un device sin flag se considera inactivo.
func (d Device) Active() bool {
	return d.IsActive != nil && *d.IsActive
}

// Assignment es el par {deviceId, role} de user_devices.
type Assignment struct {
	UserID   string
	DeviceID string
	Role     *string
}

func (a Assignment) RoleOrDefault() string {
	if a.Role == nil || *a.Role == "" {
		return DefaultRole
	}
	return *a.Role
}

// Summary es una fila de la vista de dispositivos.
type Summary struct {
	Device Device
	Role   string

	LastActivity *time.Time
	LastStatus   *string
	TotalDoses   int
}
