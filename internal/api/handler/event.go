package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/braymix/panda/internal/api"
	"github.com/braymix/panda/internal/application"
	"github.com/braymix/panda/internal/domain/event"
)

type EventHandler struct {
	eventService EventServiceInterface
}

func NewEventHandler(eventService EventServiceInterface) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// EventCreateRequest is the body of create and update
type EventCreateRequest struct {
	Title       string           `json:"title" validate:"notblank,max=200" example:"GopherCon EU"`
	Description string           `json:"description" example:"Three days of Go talks"`
	City        string           `json:"city" validate:"max=120" example:"Berlin"`
	Venue       string           `json:"venue" validate:"max=200" example:"Festsaal Kreuzberg"`
	Category    string           `json:"category" validate:"notblank,max=80" example:"Tech"`
	StartAt     string           `json:"startAt" validate:"required,timestamp" example:"2026-06-16T09:00:00+02:00"`
	EndAt       string           `json:"endAt" validate:"omitempty,timestamp" example:"2026-06-18T18:00:00+02:00"`
	Organizer   string           `json:"organizer" example:"Gophers Berlin"`
	Price       *decimal.Decimal `json:"price" example:"199.00"`
	URL         string           `json:"url" validate:"max=400" example:"https://gophercon.eu"`
}

func (r *EventCreateRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.City = strings.TrimSpace(r.City)
	r.Venue = strings.TrimSpace(r.Venue)
	r.Category = strings.TrimSpace(r.Category)
	r.StartAt = strings.TrimSpace(r.StartAt)
	r.EndAt = strings.TrimSpace(r.EndAt)
	r.URL = strings.TrimSpace(r.URL)
}

// toInput leaves unparseable timestamps at their zero value
func (r *EventCreateRequest) toInput() application.EventInput {
	startAt, _ := api.ParseTimestamp(r.StartAt)
	input := application.EventInput{
		Title:       r.Title,
		Description: r.Description,
		City:        r.City,
		Venue:       r.Venue,
		Category:    r.Category,
		StartAt:     startAt,
		Organizer:   r.Organizer,
		Price:       r.Price,
		URL:         r.URL,
	}
	if r.EndAt != "" {
		endAt, _ := api.ParseTimestamp(r.EndAt)
		input.EndAt = &endAt
	}
	return input
}

type EventResponse struct {
	ID          string       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title       string       `json:"title" example:"GopherCon EU"`
	Description string       `json:"description" example:"Three days of Go talks"`
	City        string       `json:"city" example:"Berlin"`
	Venue       string       `json:"venue" example:"Festsaal Kreuzberg"`
	Category    string       `json:"category" example:"Tech"`
	StartAt     string       `json:"startAt" example:"2026-06-16T07:00:00Z"`
	EndAt       *string      `json:"endAt" example:"2026-06-18T16:00:00Z"`
	Organizer   string       `json:"organizer" example:"Gophers Berlin"`
	Price       *json.Number `json:"price" example:"199.00"`
	URL         string       `json:"url" example:"https://gophercon.eu"`
	CreatedAt   string       `json:"createdAt" example:"2026-01-10T09:00:00Z"`
	UpdatedAt   string       `json:"updatedAt" example:"2026-01-10T09:00:00Z"`
}

func toEventResponse(e *event.Event) *EventResponse {
	resp := &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		City:        e.City,
		Venue:       e.Venue,
		Category:    e.Category,
		StartAt:     api.FormatTimestamp(e.StartAt),
		Organizer:   e.Organizer,
		URL:         e.URL,
		CreatedAt:   api.FormatTimestamp(e.CreatedAt),
		UpdatedAt:   api.FormatTimestamp(e.UpdatedAt),
	}
	if e.EndAt != nil {
		endAt := api.FormatTimestamp(*e.EndAt)
		resp.EndAt = &endAt
	}
	if e.Price != nil {
		price := json.Number(e.Price.String())
		resp.Price = &price
	}
	return resp
}

// EventPageResponse is one page of search results
type EventPageResponse struct {
	Content          []*EventResponse `json:"content"`
	TotalElements    int64            `json:"totalElements"`
	TotalPages       int              `json:"totalPages"`
	Number           int              `json:"number"`
	Size             int              `json:"size"`
	NumberOfElements int              `json:"numberOfElements"`
	First            bool             `json:"first"`
	Last             bool             `json:"last"`
	Empty            bool             `json:"empty"`
}

func toEventPageResponse(p *event.Page) *EventPageResponse {
	content := make([]*EventResponse, len(p.Items))
	for i, e := range p.Items {
		content[i] = toEventResponse(e)
	}
	return &EventPageResponse{
		Content:          content,
		TotalElements:    p.Total,
		TotalPages:       p.TotalPages(),
		Number:           p.Request.Page,
		Size:             p.Request.Size,
		NumberOfElements: len(content),
		First:            p.IsFirst(),
		Last:             p.IsLast(),
		Empty:            len(content) == 0,
	}
}

// Search godoc
// @Summary Search events
// @Description Filters by text, start window, city and category; results are paged and ordered by start time
// @Tags events
// @Produce json
// @Param q query string false "Text contained in title or description"
// @Param from query string false "Earliest start time"
// @Param to query string false "Latest start time"
// @Param city query string false "City, case-insensitive"
// @Param category query string false "Category, case-insensitive"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} EventPageResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [get]
func (h *EventHandler) Search(c echo.Context) error {
	page, size := 0, event.DefaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("size", &size).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page and size must be integers")
	}

	input := application.SearchInput{
		Query:    c.QueryParam("q"),
		City:     c.QueryParam("city"),
		Category: c.QueryParam("category"),
		Page:     page,
		Size:     size,
	}

	var violations []event.Violation
	var err error
	if input.From, err = queryTimestamp(c, "from"); err != nil {
		violations = append(violations, event.Violation{Field: "from", Message: err.Error()})
	}
	if input.To, err = queryTimestamp(c, "to"); err != nil {
		violations = append(violations, event.Violation{Field: "to", Message: err.Error()})
	}
	if len(violations) > 0 {
		return api.NewValidationHTTPError(violations)
	}

	result, err := h.eventService.SearchEvents(c.Request().Context(), input)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventPageResponse(result))
}

// GetByID godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.eventService.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param request body EventCreateRequest true "Event"
// @Success 201 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /events [post]
func (h *EventHandler) Create(c echo.Context) error {
	req, err := bindEventRequest(c)
	if err != nil {
		return err
	}

	e, err := h.eventService.CreateEvent(c.Request().Context(), req.toInput())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// Update godoc
// @Summary Replace an event
// @Description Every mutable field is overwritten with the request body
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body EventCreateRequest true "Event"
// @Success 200 {object} EventResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	req, err := bindEventRequest(c)
	if err != nil {
		return err
	}

	e, err := h.eventService.UpdateEvent(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Param id path string true "Event ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.eventService.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func bindEventRequest(c echo.Context) (*EventCreateRequest, error) {
	var req EventCreateRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return nil, withDetailViolations(err, req.toInput().Details())
	}
	return &req, nil
}

// withDetailViolations adds the cross-field rules of event.Details to a
// failed tag validation so one response lists every problem. Fields already
// reported are not repeated.
func withDetailViolations(err error, d event.Details) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return err
	}
	resp, ok := he.Message.(api.ErrorResponse)
	if !ok {
		return err
	}
	var verr *event.ValidationError
	if !errors.As(d.Validate(), &verr) {
		return err
	}

	reported := make(map[string]bool, len(resp.Violations))
	for _, v := range resp.Violations {
		reported[v.Field] = true
	}
	violations := resp.Violations
	for _, v := range verr.Violations {
		if !reported[v.Field] {
			violations = append(violations, v)
			reported[v.Field] = true
		}
	}
	return api.NewValidationHTTPError(violations)
}

func queryTimestamp(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := api.ParseTimestamp(raw)
	if err != nil {
		return nil, errors.New("must be an ISO-8601 timestamp with offset")
	}
	return &t, nil
}

// toHTTPError maps service errors to HTTP statuses
func toHTTPError(err error) error {
	var verr *event.ValidationError
	switch {
	case errors.As(err, &verr):
		return api.NewValidationHTTPError(verr.Violations)
	case errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "event not found")
	case errors.Is(err, event.ErrEventLocked):
		return echo.NewHTTPError(http.StatusConflict, "event is being modified by another request")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
	}
}
