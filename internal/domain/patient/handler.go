package patient

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.AdmitPatient)
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.PATCH("/patients/:id", h.UpdatePatient)
	api.POST("/patients/:id/discharge", h.DischargePatient)
	api.POST("/patients/:id/payments", h.RecordPayment)
}

// HTTPStatus maps a domain error onto an HTTP status code.
func HTTPStatus(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		is *InvalidStateError
		du *DuplicateIDError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &is), errors.As(err, &du):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(HTTPStatus(err), err.Error())
}

func (h *Handler) AdmitPatient(c echo.Context) error {
	var in AdmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Admit(c.Request().Context(), in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

// patientStatus is the information-status view: the full record plus the
// derived stay duration.
type patientStatus struct {
	*Patient
	StayDurationDays int  `json:"stay_duration_days"`
	Ongoing          bool `json:"ongoing"`
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, patientStatus{
		Patient:          p,
		StayDurationDays: p.DaysAdmitted(time.Now().UTC()),
		Ongoing:          p.Admission.Status == StatusActive,
	})
}

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	var (
		patients []*Patient
		total    int
		err      error
	)
	if term := c.QueryParam("q"); term != "" {
		patients, total, err = h.svc.Search(ctx, term, pg.Limit, pg.Offset)
	} else {
		patients, total, err = h.svc.List(ctx, pg.Limit, pg.Offset)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var f FieldUpdates
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.UpdateFields(c.Request().Context(), c.Param("id"), f)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"patient": res.Patient,
		"changed": res.Changed,
	})
}

func (h *Handler) DischargePatient(c echo.Context) error {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.Discharge(c.Request().Context(), c.Param("id"), body.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) RecordPayment(c echo.Context) error {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), c.Param("id"), body.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}
