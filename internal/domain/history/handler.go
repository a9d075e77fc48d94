package history

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dosage-dashboard/internal/domain/devices"
	"dosage-dashboard/internal/domain/dosages"
	"dosage-dashboard/internal/middleware"
	"dosage-dashboard/internal/platform/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// HandlerOptions define el rango por defecto cuando el cuidador todavía no eligió uno.
type HandlerOptions struct {
	DefaultDays int
	// MaxRangeDays acota from..to pedido por query (días calendario, inclusive).
	MaxRangeDays int
	Location     *time.Location
	Now          func() time.Time
}

func RegisterRoutes(r chi.Router, sessions *Sessions, opts HandlerOptions) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = 30
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = dosages.MaxRangeDays
	}

	r.Route("/dosage-history", func(hr chi.Router) {
		hr.Get("/", getHistoryHandler(sessions, opts))
		hr.Get("/export.csv", exportHistoryHandler(sessions))
		hr.Get("/chart.png", chartHistoryHandler(sessions))
	})
}

var (
	queryDecoder = newQueryDecoder()
	validate     = validator.New(validator.WithRequiredStructEnabled())
)

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

type historyQuery struct {
	From    string `schema:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `schema:"to" validate:"omitempty,datetime=2006-01-02"`
	Page    *int   `schema:"page" validate:"omitempty,min=0"`
	Refresh bool   `schema:"refresh"`
}

type rangeResponse struct {
	From string `json:"from" example:"2025-01-01"`
	To   string `json:"to" example:"2025-01-31"`
}

type dosageResponse struct {
	ID              string     `json:"id"`
	DeviceID        string     `json:"device_id"`
	StartTime       time.Time  `json:"dosage_start_time"`
	EndTime         *time.Time `json:"dosage_end_time,omitempty"`
	Status          string     `json:"status" example:"Success"`
	Successful      bool       `json:"successful"`
	DurationSeconds *float64   `json:"duration_seconds,omitempty"`
}

type bucketResponse struct {
	Date       string `json:"date" example:"2025-01-15"`
	Label      string `json:"label" example:"Jan 15"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Total      int    `json:"total"`
}

// historyResponse es la vista del historial: tabla paginada + gráfico del rango completo.
type historyResponse struct {
	Status     Status           `json:"status" enums:"loading,ready,empty,error"`
	Range      rangeResponse    `json:"range"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int              `json:"total"`
	TotalPages int              `json:"total_pages"`
	Items      []dosageResponse `json:"items"`
	Chart      []bucketResponse `json:"chart"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
}

// getHistoryHandler godoc
// @Summary Historial de dosis
// @Description Devuelve la página pedida del historial (más nuevas primero, 20 por página) y el agregado diario exitosas/fallidas del rango completo. Sin `from`/`to` usa el rango vigente de la sesión o los últimos 30 días. Cambiar de página no recalcula el gráfico. `refresh=true` vuelve a consultar todo. Rangos más largos que el máximo configurado (366 días por defecto) se rechazan con 400 `range_too_long`. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags history
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param from query string false "Día inicial YYYY-MM-DD (inclusive)"
// @Param to query string false "Día final YYYY-MM-DD (inclusive)"
// @Param page query int false "Índice de página (desde 0)"
// @Param refresh query bool false "Forzar nueva consulta"
// @Success 200 {object} historyResponse
// @Failure 400 {object} httpx.ErrorBody "query inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 502 {object} httpx.ErrorBody "registry o store no disponible"
// @Router /dosage-history [get]
func getHistoryHandler(sessions *Sessions, opts HandlerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var q historyQuery
		if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_query", "could not parse query", map[string]any{"err": err.Error()})
			return
		}
		if err := validate.Struct(q); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_query", "invalid query parameters", map[string]any{"err": err.Error()})
			return
		}
		if (q.From == "") != (q.To == "") {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_query", "from and to must be sent together", nil)
			return
		}

		ctrl := sessions.Get(claims.UserID)
		current, currentPage, hasRange := ctrl.Range()

		var rng dosages.DateRange
		switch {
		case q.From != "":
			parsed, err := dosages.ParseDateRange(q.From, q.To, opts.Location)
			if err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "invalid_range", "from must not be after to", nil)
				return
			}
			if err := parsed.CheckSpan(opts.MaxRangeDays); err != nil {
				writeHistoryError(w, err)
				return
			}
			rng = parsed
		case hasRange:
			rng = current
		default:
			rng = dosages.LastDays(opts.Now(), opts.DefaultDays, opts.Location)
		}

		rangeChanged := !hasRange || !rng.Equal(current)
		page := 0
		if q.Page != nil {
			page = *q.Page
		} else if !rangeChanged {
			page = currentPage
		}

		var (
			view View
			err  error
		)
		switch {
		case rangeChanged || q.Refresh || ctrl.Snapshot().Status == StatusError:
			view, err = ctrl.SelectRange(r.Context(), rng)
			if err == nil && page > 0 {
				view, err = ctrl.SelectPage(r.Context(), page)
			}
		case page != currentPage:
			view, err = ctrl.SelectPage(r.Context(), page)
		default:
			view = ctrl.Snapshot()
		}

		if err != nil && !errors.Is(err, ErrStale) {
			writeHistoryError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toHistoryResponse(view))
	}
}

// exportHistoryHandler godoc
// @Summary Exportar página visible a CSV
// @Description Descarga las filas de la página visible (no el rango completo) como CSV con columnas `Date/Time,Status,Duration,Device ID`.
// @Tags history
// @Produce text/csv
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {string} string "csv"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {object} httpx.ErrorBody "no hay página cargada"
// @Router /dosage-history/export.csv [get]
func exportHistoryHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		filename, body, err := sessions.Get(claims.UserID).Export()
		if err != nil {
			httpx.WriteError(w, http.StatusConflict, "not_ready", "no history page loaded", nil)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// chartHistoryHandler godoc
// @Summary Gráfico PNG del rango vigente
// @Description Renderiza exitosas vs. fallidas por día del rango vigente. 204 si el rango no tiene dosis.
// @Tags history
// @Produce png
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Success 200 {file} file "image/png"
// @Success 204 {string} string "sin datos"
// @Failure 401 {string} string "unauthorized"
// @Failure 409 {object} httpx.ErrorBody "no hay rango cargado"
// @Router /dosage-history/chart.png [get]
func chartHistoryHandler(sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		view := sessions.Get(claims.UserID).Snapshot()
		if !view.HasRange || (view.Status != StatusReady && view.Status != StatusEmpty) {
			httpx.WriteError(w, http.StatusConflict, "not_ready", "no history range loaded", nil)
			return
		}

		var buf bytes.Buffer
		if err := RenderChart(&buf, view.Range, view.Buckets); err != nil {
			if errors.Is(err, ErrNoChartData) {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, "render_failed", "could not render chart", nil)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func writeHistoryError(w http.ResponseWriter, err error) {
	var (
		re      *devices.ResolutionError
		tooLong *dosages.RangeTooLongError
	)
	switch {
	case errors.As(err, &re):
		httpx.WriteError(w, http.StatusBadGateway, "resolution_failed", "could not resolve devices", nil)
	case dosages.IsFetchError(err):
		httpx.WriteError(w, http.StatusBadGateway, "fetch_failed", "could not load dosage history", nil)
	case errors.Is(err, dosages.ErrInvalidPage):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_page", "page must be >= 0", nil)
	case errors.As(err, &tooLong):
		httpx.WriteError(w, http.StatusBadRequest, "range_too_long", "date range is too long",
			map[string]any{"days": tooLong.Days, "max_days": tooLong.Max})
	case errors.Is(err, dosages.ErrInvalidRange):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_range", "from must not be after to", nil)
	default:
		httpx.WriteError(w, http.StatusInternalServerError, "internal", "internal error", nil)
	}
}

func toHistoryResponse(v View) historyResponse {
	loc := v.Range.Location()
	out := historyResponse{
		Status:     v.Status,
		Page:       v.PageIndex,
		PageSize:   v.PageSize,
		Total:      v.Total,
		TotalPages: v.TotalPages,
		Items:      make([]dosageResponse, 0, len(v.Items)),
		Chart:      make([]bucketResponse, 0, len(v.Buckets)),
		Successful: v.Successful,
		Failed:     v.Failed,
	}
	if v.HasRange {
		out.Range = rangeResponse{
			From: dosages.DayKey(v.Range.From, loc),
			To:   dosages.DayKey(v.Range.To, loc),
		}
	}
	for _, e := range v.Items {
		item := dosageResponse{
			ID:         e.ID,
			DeviceID:   e.DeviceID,
			StartTime:  e.StartTime,
			EndTime:    e.EndTime,
			Status:     e.Status(),
			Successful: e.IsSuccess(),
		}
		if d, ok := e.Duration(); ok {
			secs := d.Seconds()
			item.DurationSeconds = &secs
		}
		out.Items = append(out.Items, item)
	}
	for _, b := range v.Buckets {
		out.Chart = append(out.Chart, bucketResponse{
			Date:       dosages.DayKey(b.Date, loc),
			Label:      b.Label,
			Successful: b.Successful,
			Failed:     b.Failed,
			Total:      b.Total,
		})
	}
	return out
}
