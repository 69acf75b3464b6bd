package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"
)

// ShowRemovedMessage is flashed after a show is deleted from the HTML pages.
const ShowRemovedMessage = "The show was removed successfully."

// ShowRequest is the request body for POST /api/shows and PUT /api/shows/{id}.
type ShowRequest struct {
	Date     string `json:"date" example:"2024-10-24"`
	ShowName string `json:"show_name" example:"Lateralus Tour"`
	Venue    string `json:"venue" example:"Reunion Arena"`
}

// Validate implements Validator.
func (s ShowRequest) Validate() []string {
	var errs []string
	if _, err := parseDate("date", s.Date); err != nil {
		errs = append(errs, err.Error())
	}
	if s.ShowName == "" {
		errs = append(errs, "show_name is required")
	}
	if s.Venue == "" {
		errs = append(errs, "venue is required")
	}
	return errs
}

func (s ShowRequest) show() *domain.Show {
	date, _ := parseDate("date", s.Date)
	return domain.NewShow(date, s.ShowName, s.Venue)
}

// ResidencyRequest is the request body for POST /api/shows/residency.
type ResidencyRequest struct {
	ShowRequest
	Weeks int `json:"weeks" example:"4"`
}

// Validate implements Validator.
func (s ResidencyRequest) Validate() []string {
	errs := s.ShowRequest.Validate()
	if s.Weeks < 1 {
		errs = append(errs, "weeks must be at least 1")
	}
	return errs
}

// ListShowsResponse is the data payload for GET /api/shows.
type ListShowsResponse struct {
	Items      []*domain.Show         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListShowsSuccessResponse is the success response envelope for GET /api/shows (200).
type ListShowsSuccessResponse struct {
	Data  ListShowsResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ShowSuccessResponse is the success response envelope for endpoints returning one show.
type ShowSuccessResponse struct {
	Data  *domain.Show      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ResidencySuccessResponse is the success response envelope for POST /api/shows/residency (201).
type ResidencySuccessResponse struct {
	Data  []*domain.Show    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteResponse is the data payload for DELETE endpoints (200).
type DeleteResponse struct {
	Status string `json:"status"`
}

// DeleteSuccessResponse is the success response envelope for DELETE endpoints (200).
type DeleteSuccessResponse struct {
	Data  DeleteResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ShowController struct {
	Logger  *slog.Logger
	Service domain.ShowService
	Views   *views.Renderer
}

func NewShowController(logger *slog.Logger, svc domain.ShowService, v *views.Renderer) *ShowController {
	return &ShowController{
		Logger:  logger,
		Service: svc,
		Views:   v,
	}
}

// Index renders the paginated show listing, newest first.
func (c *ShowController) Index(w http.ResponseWriter, r *http.Request) {
	search, pageNumber := indexQuery(r)
	page, err := c.Service.List(r.Context(), search, domain.PaginationParams{Page: pageNumber, PageSize: indexPageSize})
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.ShowsIndex, "Shows", views.ShowIndexPage{Page: page, CurrentFilter: search})
}

// Info renders a show with its lineup.
func (c *ShowController) Info(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	show, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.ShowDetails, show.ShowName, show)
}

func (c *ShowController) AddForm(w http.ResponseWriter, r *http.Request) {
	c.Views.Render(w, r, http.StatusOK, views.ShowForm, "Add a show", c.addPage(nil, 1, ""))
}

func (c *ShowController) addPage(show *domain.Show, weeks int, msg string) views.ShowFormPage {
	return views.ShowFormPage{
		Action:    "/shows/add",
		Heading:   "Add a show",
		Submit:    "Add",
		Error:     msg,
		Show:      show,
		Residency: true,
		Weeks:     weeks,
	}
}

// Add creates a show, or a weekly run of it when weeks is above one.
func (c *ShowController) Add(w http.ResponseWriter, r *http.Request) {
	show, err := showFromForm(r)
	weeks := 1
	if err == nil {
		weeks, err = formWeeks(r)
	}
	if err == nil {
		if weeks > 1 {
			_, err = c.Service.CreateResidency(r.Context(), show, weeks)
		} else {
			err = c.Service.Create(r.Context(), show)
		}
	}
	if err != nil {
		if flashConflict(w, r, err, "/shows/add") {
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			c.Views.Render(w, r, http.StatusBadRequest, views.ShowForm, "Add a show", c.addPage(show, weeks, validationMessage(err)))
			return
		}
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/shows/info/%d", show.ID), http.StatusSeeOther)
}

func (c *ShowController) editPage(show *domain.Show, msg string) views.ShowFormPage {
	return views.ShowFormPage{
		Action:  fmt.Sprintf("/shows/edit/%d", show.ID),
		Heading: "Edit show",
		Submit:  "Save",
		Error:   msg,
		Show:    show,
	}
}

func (c *ShowController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	show, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.ShowForm, "Edit show", c.editPage(show, ""))
}

func (c *ShowController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	show, err := showFromForm(r)
	show.ID = id
	if err == nil {
		err = c.Service.Update(r.Context(), show)
	}
	if err != nil {
		if flashConflict(w, r, err, fmt.Sprintf("/shows/edit/%d", id)) {
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			c.Views.Render(w, r, http.StatusBadRequest, views.ShowForm, "Edit show", c.editPage(show, validationMessage(err)))
			return
		}
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/shows/info/%d", id), http.StatusSeeOther)
}

// RemoveForm asks for confirmation before deleting a show.
func (c *ShowController) RemoveForm(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	show, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.ShowDelete, "Remove show", show)
}

func (c *ShowController) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	helpers.SetFlash(w, ShowRemovedMessage)
	http.Redirect(w, r, "/shows", http.StatusSeeOther)
}

// Calendar godoc
// @Summary Download a show as iCalendar
// @Description One VEVENT per band in the lineup, located at the show's venue.
// @Tags shows
// @Produce text/calendar
// @Param id path int true "Show ID"
// @Success 200 {string} string "text/calendar attachment"
// @Failure 404 {string} string "show not found"
// @Router /shows/calendar/{id} [get]
func (c *ShowController) Calendar(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	ics, err := c.Service.Calendar(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="show-%d.ics"`, id))
	w.Header().Set("Content-Length", strconv.Itoa(len(ics)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(ics)
}

// List godoc
// @Summary List shows
// @Description Paginated shows, newest date first, each with its headliner. search filters by show name (case-insensitive substring).
// @Tags shows
// @Produce json
// @Param search query string false "Show name filter"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListShowsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows [get]
func (c *ShowController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	page, err := c.Service.List(r.Context(), r.URL.Query().Get("search"), params)
	if err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListShowsResponse{
		Items:      page.Items,
		Pagination: helpers.NewPaginationMeta(page),
	})
}

// Get godoc
// @Summary Get a show by ID
// @Description Returns the show and its bands, latest start first.
// @Tags shows
// @Produce json
// @Param id path int true "Show ID"
// @Success 200 {object} controllers.ShowSuccessResponse "data contains the show"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows/{id} [get]
func (c *ShowController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid show id")
		return
	}
	show, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, show)
}

// Create godoc
// @Summary Create a show
// @Description Venue and name must be unique on the show's date (case-insensitive). Requires an operator token.
// @Tags shows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param show body ShowRequest true "Show data"
// @Success 201 {object} controllers.ShowSuccessResponse "data contains the created show"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows [post]
func (c *ShowController) Create(w http.ResponseWriter, r *http.Request) {
	var req ShowRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	show := req.show()
	if err := c.Service.Create(r.Context(), show); err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, show)
}

// CreateResidency godoc
// @Summary Book a weekly residency
// @Description Creates the same show on weeks consecutive weeks (1 to 12) starting at date. Nothing is stored if any date conflicts. Requires an operator token.
// @Tags shows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param residency body ResidencyRequest true "Show data and number of weeks"
// @Success 201 {object} controllers.ResidencySuccessResponse "data contains the created shows"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows/residency [post]
func (c *ShowController) CreateResidency(w http.ResponseWriter, r *http.Request) {
	var req ResidencyRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	shows, err := c.Service.CreateResidency(r.Context(), req.show(), req.Weeks)
	if err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, shows)
}

// Update godoc
// @Summary Update a show
// @Description Replaces date, name and venue. Moving the date moves the lineup with it. Requires an operator token.
// @Tags shows
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Show ID"
// @Param show body ShowRequest true "Show data"
// @Success 200 {object} controllers.ShowSuccessResponse "data contains the updated show"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows/{id} [put]
func (c *ShowController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid show id")
		return
	}
	var req ShowRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	show := req.show()
	show.ID = id
	if err := c.Service.Update(r.Context(), show); err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, show)
}

// Delete godoc
// @Summary Delete a show
// @Description Removes the show and its lineup. Requires an operator token.
// @Tags shows
// @Produce json
// @Security BearerAuth
// @Param id path int true "Show ID"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/shows/{id} [delete]
func (c *ShowController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid show id")
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}
