package notifications

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hub *Hub) {
	r.Route("/me/notifications", func(nr chi.Router) {
		nr.Get("/", listNotificationsHandler(hub))
		nr.Delete("/{notificationID}", dismissNotificationHandler(hub))
	})
}

// notificationResponse es un toast vigente.
type notificationResponse struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type" enums:"success,warning"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}

// listNotificationsHandler godoc
// @Summary Listar notificaciones vigentes
// @Description Devuelve los toasts de dosis del usuario autenticado (más nuevos primero, máximo 5, vencen a los 5 segundos). La primera llamada abre la suscripción al feed de dosis de sus dispositivos. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags notifications
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {array} notificationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {object} httpx.ErrorBody "registry o feed no disponible"
// @Router /me/notifications [get]
func listNotificationsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		center, err := hub.Center(r.Context(), claims.UserID)
		if err != nil {
			writeHubError(w, err)
			return
		}

		items := center.List()
		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, notificationResponse{
				ID:        n.ID,
				Type:      n.Type,
				Title:     n.Title,
				Message:   n.Message,
				DeviceID:  n.DeviceID,
				Timestamp: n.Timestamp,
			})
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// dismissNotificationHandler godoc
// @Summary Descartar notificación
// @Description Descarta manualmente un toast antes de que venza.
// @Tags notifications
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param notificationID path string true "ID de la notificación"
// @Success 204 {string} string "dismissed"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "notification not found"
// @Router /me/notifications/{notificationID} [delete]
func dismissNotificationHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		center, err := hub.Center(r.Context(), claims.UserID)
		if err != nil {
			writeHubError(w, err)
			return
		}
		if !center.Dismiss(chi.URLParam(r, "notificationID")) {
			http.Error(w, "notification not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func writeHubError(w http.ResponseWriter, err error) {
	var re *devices.ResolutionError
	if errors.As(err, &re) {
		httpx.WriteError(w, http.StatusBadGateway, "resolution_failed", "could not resolve devices", nil)
		return
	}
	httpx.WriteError(w, http.StatusBadGateway, "feed_unavailable", "could not subscribe to dosage feed", nil)
}
