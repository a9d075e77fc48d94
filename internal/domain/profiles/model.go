package profiles

import (
	"strings"
	"time"

	"dosage-dashboard/internal/ports/auth"
)

// DefaultDisplayName cuando no hay nombre guardado ni email.
const DefaultDisplayName = "Caregiver"

// Profile es la fila de profiles del cuidador (id = user id).
type Profile struct {
	UserID        string
	PreferredName *string
	UpdatedAt     time.Time
}

// StoredName devuelve el preferred_name guardado, o "" si no hay.
func (p Profile) StoredName() string {
	if p.PreferredName == nil {
		return ""
	}
	return strings.TrimSpace(*p.PreferredName)
}

// DisplayName: nombre guardado, luego el del token, luego el prefijo del email, luego "Caregiver".
func DisplayName(p Profile, c auth.Claims) string {
	if name := p.StoredName(); name != "" {
		return name
	}
	if name := strings.TrimSpace(c.PreferredName); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(c.Email), "@"); local != "" {
		return local
	}
	return DefaultDisplayName
}
