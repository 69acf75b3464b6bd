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

// BandRequest is the request body for POST /api/bands and PUT /api/bands/{id}.
// Times are times of day; the date always comes from the show.
type BandRequest struct {
	ShowID    int64  `json:"show_id" example:"1"`
	BandName  string `json:"band_name" example:"Tool"`
	StartTime string `json:"start_time" example:"22:00"`
	EndTime   string `json:"end_time" example:"23:30"`
}

// Validate implements Validator.
func (b BandRequest) Validate() []string {
	var errs []string
	if b.ShowID < 1 {
		errs = append(errs, "show_id is required")
	}
	if b.BandName == "" {
		errs = append(errs, "band_name is required")
	}
	if _, err := parseClock("start_time", b.StartTime); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := parseClock("end_time", b.EndTime); err != nil {
		errs = append(errs, err.Error())
	}
	return errs
}

func (b BandRequest) band() *domain.Band {
	start, _ := parseClock("start_time", b.StartTime)
	end, _ := parseClock("end_time", b.EndTime)
	return domain.NewBand(b.ShowID, b.BandName, start, end)
}

// ListBandsResponse is the data payload for GET /api/bands.
type ListBandsResponse struct {
	Items      []*domain.Band         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListBandsSuccessResponse is the success response envelope for GET /api/bands (200).
type ListBandsSuccessResponse struct {
	Data  ListBandsResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BandSuccessResponse is the success response envelope for endpoints returning one band.
type BandSuccessResponse struct {
	Data  *domain.Band      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type BandController struct {
	Logger  *slog.Logger
	Service domain.BandService
	Views   *views.Renderer
}

func NewBandController(logger *slog.Logger, svc domain.BandService, v *views.Renderer) *BandController {
	return &BandController{
		Logger:  logger,
		Service: svc,
		Views:   v,
	}
}

// Index renders the paginated band listing, A to Z.
func (c *BandController) Index(w http.ResponseWriter, r *http.Request) {
	search, pageNumber := indexQuery(r)
	page, err := c.Service.List(r.Context(), search, domain.PaginationParams{Page: pageNumber, PageSize: indexPageSize})
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.BandsIndex, "Bands", views.BandIndexPage{Page: page, CurrentFilter: search})
}

func (c *BandController) Details(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	band, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.BandDetails, band.BandName, band)
}

// formPage loads the show dropdown. A nil page means the error was already rendered.
func (c *BandController) formPage(w http.ResponseWriter, r *http.Request, page views.BandFormPage) *views.BandFormPage {
	shows, err := c.Service.ShowOptions(r.Context())
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return nil
	}
	page.Shows = shows
	return &page
}

// AddForm renders the new band form. ?showId= preselects the parent show.
func (c *BandController) AddForm(w http.ResponseWriter, r *http.Request) {
	var band *domain.Band
	if id, err := strconv.ParseInt(r.URL.Query().Get("showId"), 10, 64); err == nil && id > 0 {
		band = &domain.Band{ShowID: id}
	}
	page := c.formPage(w, r, views.BandFormPage{Action: "/bands/add", Heading: "Add a band", Submit: "Add", Band: band})
	if page == nil {
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.BandForm, "Add a band", page)
}

func (c *BandController) Add(w http.ResponseWriter, r *http.Request) {
	band, err := bandFromForm(r)
	if err == nil {
		err = c.Service.Create(r.Context(), band)
	}
	if err != nil {
		if flashConflict(w, r, err, "/bands/add") {
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
			c.redisplay(w, r, views.BandFormPage{Action: "/bands/add", Heading: "Add a band", Submit: "Add", Band: band}, err)
			return
		}
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/shows/info/%d", band.ShowID), http.StatusSeeOther)
}

// redisplay shows the form again with the posted values and the reason it was rejected.
// An unknown parent show is reported on the form rather than as a 404.
func (c *BandController) redisplay(w http.ResponseWriter, r *http.Request, page views.BandFormPage, err error) {
	page.Error = validationMessage(err)
	if errors.Is(err, domain.ErrNotFound) {
		page.Error = "The selected show does not exist."
	}
	p := c.formPage(w, r, page)
	if p == nil {
		return
	}
	c.Views.Render(w, r, http.StatusBadRequest, views.BandForm, page.Heading, p)
}

func (c *BandController) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	band, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	page := c.formPage(w, r, views.BandFormPage{Action: fmt.Sprintf("/bands/edit/%d", id), Heading: "Edit band", Submit: "Save", Band: band})
	if page == nil {
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.BandForm, "Edit band", page)
}

func (c *BandController) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	formPath := fmt.Sprintf("/bands/edit/%d", id)
	band, err := bandFromForm(r)
	band.ID = id
	if err == nil {
		err = c.Service.Update(r.Context(), band)
	}
	if err != nil {
		if flashConflict(w, r, err, formPath) {
			return
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			c.redisplay(w, r, views.BandFormPage{Action: formPath, Heading: "Edit band", Submit: "Save", Band: band}, err)
			return
		}
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.Redirect(w, r, fmt.Sprintf("/shows/info/%d", band.ShowID), http.StatusSeeOther)
}

func (c *BandController) RemoveForm(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	band, err := c.Service.Get(r.Context(), id)
	if err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	c.Views.Render(w, r, http.StatusOK, views.BandDelete, "Remove band", band)
}

func (c *BandController) Remove(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		renderNotFound(c.Views, w, r)
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		renderError(c.Views, c.Logger, w, r, err)
		return
	}
	http.Redirect(w, r, "/shows", http.StatusSeeOther)
}

// List godoc
// @Summary List bands
// @Description Paginated bands ordered by name, each with its show. search filters by band name (case-insensitive substring).
// @Tags bands
// @Produce json
// @Param search query string false "Band name filter"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListBandsSuccessResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bands [get]
func (c *BandController) List(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	page, err := c.Service.List(r.Context(), r.URL.Query().Get("search"), params)
	if err != nil {
		writeAPIError(c.Logger, w, r, err, "band not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListBandsResponse{
		Items:      page.Items,
		Pagination: helpers.NewPaginationMeta(page),
	})
}

// Get godoc
// @Summary Get a band by ID
// @Tags bands
// @Produce json
// @Param id path int true "Band ID"
// @Success 200 {object} controllers.BandSuccessResponse "data contains the band and its show"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bands/{id} [get]
func (c *BandController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid band id")
		return
	}
	band, err := c.Service.Get(r.Context(), id)
	if err != nil {
		writeAPIError(c.Logger, w, r, err, "band not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, band)
}

// Create godoc
// @Summary Book a band into a show
// @Description Times are anchored on the show's date; a late set ending by 02:00 finishes the next day. The slot may not overlap the lineup or the band's other bookings that date. Requires an operator token.
// @Tags bands
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param band body BandRequest true "Band data"
// @Success 201 {object} controllers.BandSuccessResponse "data contains the created band"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (show)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bands [post]
func (c *BandController) Create(w http.ResponseWriter, r *http.Request) {
	var req BandRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	band := req.band()
	if err := c.Service.Create(r.Context(), band); err != nil {
		writeAPIError(c.Logger, w, r, err, "show not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, band)
}

// Update godoc
// @Summary Update a band
// @Description Same rules as create; the band's own slot never conflicts with itself. Requires an operator token.
// @Tags bands
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Band ID"
// @Param band body BandRequest true "Band data"
// @Success 200 {object} controllers.BandSuccessResponse "data contains the updated band"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bands/{id} [put]
func (c *BandController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid band id")
		return
	}
	var req BandRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	band := req.band()
	band.ID = id
	if err := c.Service.Update(r.Context(), band); err != nil {
		writeAPIError(c.Logger, w, r, err, "band not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, band)
}

// Delete godoc
// @Summary Delete a band
// @Tags bands
// @Produce json
// @Security BearerAuth
// @Param id path int true "Band ID"
// @Success 200 {object} controllers.DeleteSuccessResponse "data contains status"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/bands/{id} [delete]
func (c *BandController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.ParseID(r, "id")
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid band id")
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		writeAPIError(c.Logger, w, r, err, "band not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}
