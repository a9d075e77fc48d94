package dashboard

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/dashboard", getDashboardHandler(svc))
}

type recentDosageResponse struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"device_id"`
	StartTime time.Time `json:"dosage_start_time"`
	Status    string    `json:"status" example:"Success"`
}

type dashboardResponse struct {
	DisplayName   string                 `json:"display_name" example:"Ana"`
	LastDose      *recentDosageResponse  `json:"last_dose,omitempty"`
	TodayCount    int                    `json:"today_count"`
	WeekCount     int                    `json:"week_count"`
	ActiveDevices int                    `json:"active_devices"`
	TotalDevices  int                    `json:"total_devices"`
	Recent        []recentDosageResponse `json:"recent"`
}

// getDashboardHandler godoc
// @Summary Resumen del cuidador
// @Description Saludo, última dosis, dosis de hoy y de los últimos 7 días, dispositivos activos/total y las 10 dosis más recientes. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags dashboard
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} dashboardResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {object} httpx.ErrorBody "registry o store no disponible"
// @Router /me/dashboard [get]
func getDashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sum, err := svc.Summary(r.Context(), claims)
		if err != nil {
			var re *devices.ResolutionError
			if errors.As(err, &re) {
				httpx.WriteError(w, http.StatusBadGateway, "resolution_failed", "could not resolve devices", nil)
				return
			}
			httpx.WriteError(w, http.StatusBadGateway, "fetch_failed", "could not load dashboard", nil)
			return
		}

		out := dashboardResponse{
			DisplayName:   sum.DisplayName,
			TodayCount:    sum.TodayCount,
			WeekCount:     sum.WeekCount,
			ActiveDevices: sum.ActiveDevices,
			TotalDevices:  sum.TotalDevices,
			Recent:        make([]recentDosageResponse, 0, len(sum.Recent)),
		}
		if sum.LastDose != nil {
			last := toRecent(*sum.LastDose)
			out.LastDose = &last
		}
		for _, e := range sum.Recent {
			out.Recent = append(out.Recent, toRecent(e))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

func toRecent(e dosages.DosageEvent) recentDosageResponse {
	return recentDosageResponse{
		ID:        e.ID,
		DeviceID:  e.DeviceID,
		StartTime: e.StartTime,
		Status:    e.Status(),
	}
}
