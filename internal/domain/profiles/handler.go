package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/httpx"
	"dosage-dashboard/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/me/profile", getProfileHandler(svc))
	r.Put("/me/profile", putProfileHandler(svc))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type profileResponse struct {
	UserID        string     `json:"user_id"`
	Email         string     `json:"email,omitempty" example:"ana@example.com"`
	PreferredName *string    `json:"preferred_name"`
	DisplayName   string     `json:"display_name" example:"Ana"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type updateProfileRequest struct {
	PreferredName string `json:"preferred_name" validate:"max=80"`
}

// getProfileHandler godoc
// @Summary Perfil del cuidador
// @Description Nombre preferido guardado y el nombre que muestra el dashboard (guardado, luego el del token, luego el prefijo del email, luego "Caregiver"). Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags profile
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {object} profileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {object} httpx.ErrorBody "store no disponible"
// @Router /me/profile [get]
func getProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := svc.Get(r.Context(), claims.UserID)
		if err != nil {
			writeProfileError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toProfileResponse(p, claims))
	}
}

// putProfileHandler godoc
// @Summary Actualizar nombre preferido
// @Description Crea o reemplaza el perfil del cuidador. `preferred_name` vacío lo borra. Máximo 80 caracteres.
// @Tags profile
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param body body updateProfileRequest true "Perfil"
// @Success 200 {object} profileResponse
// @Failure 400 {object} httpx.ErrorBody "body inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {object} httpx.ErrorBody "store no disponible"
// @Router /me/profile [put]
func putProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateProfileRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "could not decode body", map[string]any{"err": err.Error()})
			return
		}
		if err := validate.Struct(req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid profile", map[string]any{"err": err.Error()})
			return
		}

		p, err := svc.UpdatePreferredName(r.Context(), claims.UserID, req.PreferredName)
		if err != nil {
			writeProfileError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toProfileResponse(p, claims))
	}
}

func writeProfileError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidInput) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid profile", nil)
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, "internal", "could not access profile", nil)
}

func toProfileResponse(p Profile, c auth.Claims) profileResponse {
	out := profileResponse{
		UserID:        c.UserID,
		Email:         c.Email,
		PreferredName: p.PreferredName,
		DisplayName:   DisplayName(p, c),
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
