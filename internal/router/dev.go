package router

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/platform/httpx"
	"dosage-dashboard/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type dosageInserter interface {
	Insert(ctx context.Context, e dosages.DosageEvent) error
}

type publisher interface {
	Publish(ctx context.Context, e dosages.DosageEvent) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Sólo en modo dev: simula el insert que haría un dispositivo en medical_raw.
func registerDevRoutes(r chi.Router, store dosageInserter, feed publisher, log logger.Logger, now func() time.Time) {
	r.Post("/dev/devices/{deviceID}/dosages", ingestDosageHandler(store, feed, log, now))
}

type ingestDosageRequest struct {
	StartTime *time.Time `json:"dosage_start_time"`
	EndTime   *time.Time `json:"dosage_end_time"`
	StatusLog *string    `json:"status_log" validate:"omitempty,max=64"`
}

type ingestDosageResponse struct {
	ID        string     `json:"id"`
	DeviceID  string     `json:"device_id"`
	StartTime time.Time  `json:"dosage_start_time"`
	EndTime   *time.Time `json:"dosage_end_time,omitempty"`
	Status    string     `json:"status"`
}

// ingestDosageHandler godoc
// @Summary (dev) Simular dosis de un dispositivo
// @Description Inserta un evento en el store y lo publica en el feed (dispara notificaciones). Solo existe sin verificador de identidad. Sin `dosage_start_time` usa la hora actual.
// @Tags dev
// @Accept json
// @Produce json
// @Param deviceID path string true "ID del dispositivo"
// @Param body body ingestDosageRequest true "Evento"
// @Success 201 {object} ingestDosageResponse
// @Failure 400 {object} httpx.ErrorBody "body inválido"
// @Router /dev/devices/{deviceID}/dosages [post]
func ingestDosageHandler(store dosageInserter, feed publisher, log logger.Logger, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceID := strings.TrimSpace(chi.URLParam(r, "deviceID"))
		if deviceID == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_device", "device id required", nil)
			return
		}

		var req ingestDosageRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_json", "could not decode body", map[string]any{"err": err.Error()})
			return
		}
		if req.StartTime == nil {
			start := now().UTC()
			req.StartTime = &start
		}
		if err := validate.Struct(req); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "invalid dosage event", map[string]any{"err": err.Error()})
			return
		}

		created := now().UTC()
		e := dosages.DosageEvent{
			ID:          uuid.NewString(),
			DeviceID:    deviceID,
			StartTime:   req.StartTime.UTC(),
			EndTime:     req.EndTime,
			StatusLabel: req.StatusLog,
			CreatedAt:   &created,
		}
		if err := store.Insert(r.Context(), e); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_body", "could not store dosage", map[string]any{"err": err.Error()})
			return
		}
		if feed != nil {
			if err := feed.Publish(r.Context(), e); err != nil {
				log.Warn("dosage publish failed", map[string]any{"err": err, "device_id": deviceID})
			}
		}

		httpx.WriteJSON(w, http.StatusCreated, ingestDosageResponse{
			ID:        e.ID,
			DeviceID:  e.DeviceID,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
			Status:    e.Status(),
		})
	}
}
