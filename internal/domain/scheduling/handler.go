package scheduling

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
	"github.com/clinichub/clinichub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the timetable and appointment endpoints onto the
// role-scoped groups built in main. The search group is public.
func (h *Handler) RegisterRoutes(clinic, doctor, customer, search *echo.Group) {
	clinic.GET("/doctor/:doctorId/timetable", h.ClinicTimetable)
	clinic.POST("/doctor/:doctorId/timetable", h.SetTimetable)
	clinic.GET("/doctor/:doctorId/appointment", h.ClinicDoctorAppointments)
	clinic.GET("/appointment", h.ClinicAppointments)

	doctor.GET("/timetable", h.DoctorTimetable)
	doctor.GET("/appointment", h.DoctorAppointments)

	customer.GET("/appointment", h.CustomerAppointments)
	customer.POST("/appointment/:timetableId", h.BookAppointment)
	customer.DELETE("/appointment/:appointmentId", h.CancelAppointment)

	search.GET("/doctor/:doctorId/timetable", h.PublicTimetable)
}

// -- Timetable --

func (h *Handler) SetTimetable(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	var starts []time.Time
	if err := c.Bind(&starts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid timetable payload")
	}

	clinicID := auth.UserIDFromContext(c.Request().Context())
	slots, err := h.svc.SetWorkingHoursForClinic(c.Request().Context(), clinicID, doctorID, starts)
	if err != nil {
		return mapError(err)
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) ClinicTimetable(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	clinicID := auth.UserIDFromContext(c.Request().Context())
	slots, err := h.svc.TimetableForClinic(c.Request().Context(), clinicID, doctorID)
	if err != nil {
		return mapError(err)
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) DoctorTimetable(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	slots, err := h.svc.Timetable(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

func (h *Handler) PublicTimetable(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	slots, err := h.svc.Timetable(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	if slots == nil {
		slots = []*Slot{}
	}
	return c.JSON(http.StatusOK, slots)
}

// -- Appointments --

func (h *Handler) BookAppointment(c echo.Context) error {
	slotID, err := uuid.Parse(c.Param("timetableId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid timetable id")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	appt, err := h.svc.Book(c.Request().Context(), customerID, slotID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) CancelAppointment(c echo.Context) error {
	apptID, err := uuid.Parse(c.Param("appointmentId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Cancel(c.Request().Context(), customerID, apptID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CustomerAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	customerID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.AppointmentsByCustomer(c.Request().Context(), customerID, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DoctorAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctorID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.AppointmentsByDoctor(c.Request().Context(), doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ClinicAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)
	clinicID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.AppointmentsByClinic(c.Request().Context(), clinicID, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ClinicDoctorAppointments(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	pg := pagination.FromContext(c)
	clinicID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.AppointmentsForClinicDoctor(c.Request().Context(), clinicID, doctorID, pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlotReserved), errors.Is(err, ErrOverlappingSlots):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
