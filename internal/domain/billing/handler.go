package billing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/patient"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/bill", h.GenerateBill)
	api.GET("/patients/:id/bill", h.GetBill)
}

// GenerateBillInput carries the ad-hoc charges as raw strings; a blank or
// malformed component bills as zero rather than rejecting the request.
type GenerateBillInput struct {
	LabCharges       string `json:"lab_charges"`
	ProcedureCharges string `json:"procedure_charges"`
	PharmacyCharges  string `json:"pharmacy_charges"`
}

func (h *Handler) GenerateBill(c echo.Context) error {
	var in GenerateBillInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	adhoc := ParseAdHocCharges(in.LabCharges, in.ProcedureCharges, in.PharmacyCharges)
	b, err := h.svc.ComputeBill(c.Request().Context(), c.Param("id"), adhoc)
	if err != nil {
		return echo.NewHTTPError(patient.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetBill(c echo.Context) error {
	b, err := h.svc.GetBill(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(patient.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, b)
}
