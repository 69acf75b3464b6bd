package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"
)

// WeatherSuccessResponse is the success response envelope for GET /api/weather (200).
type WeatherSuccessResponse struct {
	Data  *domain.Weather   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type WeatherController struct {
	Logger  *slog.Logger
	Service domain.WeatherService
	Views   *views.Renderer
}

func NewWeatherController(logger *slog.Logger, svc domain.WeatherService, v *views.Renderer) *WeatherController {
	return &WeatherController{
		Logger:  logger,
		Service: svc,
		Views:   v,
	}
}

// Widget renders the header fragment. A failed lookup renders "Weather unavailable"
// so the page around it still loads.
func (c *WeatherController) Widget(w http.ResponseWriter, r *http.Request) {
	weather, err := c.Service.Current(r.Context())
	if err != nil {
		if !errors.Is(err, domain.ErrWeatherUnavailable) {
			c.Logger.WarnContext(r.Context(), "weather lookup failed", "err", err)
		}
		weather = nil
	}
	w.Header().Set("Cache-Control", "no-store")
	c.Views.Partial(w, r, http.StatusOK, views.WeatherWidget, views.WeatherPage{Weather: weather})
}

// Current godoc
// @Summary Current weather
// @Description Conditions for the configured city (imperial units), cached between refreshes.
// @Tags weather
// @Produce json
// @Success 200 {object} controllers.WeatherSuccessResponse "data contains the reading"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/weather [get]
func (c *WeatherController) Current(w http.ResponseWriter, r *http.Request) {
	weather, err := c.Service.Current(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, domain.ErrWeatherUnavailable.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, weather)
}
