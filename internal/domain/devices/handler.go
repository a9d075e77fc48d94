package devices

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/devices", listMyDevicesHandler(svc))
}

// deviceResponse es una fila de la vista de dispositivos del cuidador.
type deviceResponse struct {
	ID              string     `json:"id"`
	MACAddress      string     `json:"mac_address"`
	FirmwareVersion *string    `json:"firmware_version,omitempty"`
	IsActive        bool       `json:"is_active"`
	Role            string     `json:"role"`
	CreatedAt       time.Time  `json:"created_at"`
	LastActivity    *time.Time `json:"last_activity,omitempty"`
	LastStatus      *string    `json:"last_status,omitempty"`
	TotalDoses      int        `json:"total_doses"`
}

// listMyDevicesHandler godoc
// @Summary Listar mis dispositivos
// @Description Devuelve los dispositivos asignados al usuario autenticado con su rol (por defecto `Owner`), la última actividad registrada y el total de dosis. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags devices
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} deviceResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {object} httpx.ErrorBody "registry o store no disponible"
// @Router /me/devices [get]
func listMyDevicesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.Overview(r.Context(), claims.UserID)
		if err != nil {
			var re *ResolutionError
			if errors.As(err, &re) {
				httpx.WriteError(w, http.StatusBadGateway, "resolution_failed", "could not resolve devices", nil)
				return
			}
			httpx.WriteError(w, http.StatusBadGateway, "fetch_failed", "could not load devices", nil)
			return
		}

		out := make([]deviceResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toDeviceResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toDeviceResponse(s Summary) deviceResponse {
	return deviceResponse{
		ID:              s.Device.ID,
		MACAddress:      s.Device.MACAddress,
		FirmwareVersion: s.Device.FirmwareVersion,
		IsActive:        s.Device.Active(),
		Role:            s.Role,
		CreatedAt:       s.Device.CreatedAt,
		LastActivity:    s.LastActivity,
		LastStatus:      s.LastStatus,
		TotalDoses:      s.TotalDoses,
	}
}
