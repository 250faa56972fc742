package identity

import (
	"errors"
	"net/http"

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

// RegisterRoutes wires the registration, profile, and directory endpoints.
// The user and search groups are public; the rest are role-scoped.
func (h *Handler) RegisterRoutes(user, clinic, doctor, customer, search *echo.Group) {
	user.POST("/register/customer", h.RegisterCustomer)
	user.POST("/register/clinic", h.RegisterClinic)
	user.POST("/login", h.Login)

	clinic.GET("", h.ClinicProfile)
	clinic.POST("", h.UpdateClinicProfile)
	clinic.POST("/doctor", h.RegisterDoctor)
	clinic.GET("/doctor", h.ClinicDoctors)
	clinic.GET("/doctor/:doctorId", h.ClinicDoctor)

	doctor.GET("", h.DoctorProfile)
	doctor.POST("", h.UpdateDoctorProfile)

	customer.GET("", h.CustomerProfile)
	customer.POST("", h.UpdateCustomerProfile)

	search.GET("/clinic", h.SearchClinics)
	search.GET("/clinic/:clinicId", h.SearchClinic)
	search.GET("/clinic/:clinicId/doctor", h.SearchClinicDoctors)
	search.GET("/doctor", h.SearchDoctors)
	search.GET("/doctor/:doctorId", h.SearchDoctor)
}

// -- Registration and login --

func (h *Handler) RegisterCustomer(c echo.Context) error {
	var in RegisterCustomerInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration payload")
	}
	session, err := h.svc.RegisterCustomer(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) RegisterClinic(c echo.Context) error {
	var in RegisterClinicInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration payload")
	}
	session, err := h.svc.RegisterClinic(c.Request().Context(), in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var in RegisterDoctorInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid registration payload")
	}
	clinicID := auth.UserIDFromContext(c.Request().Context())
	session, err := h.svc.RegisterDoctor(c.Request().Context(), clinicID, in)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c echo.Context) error {
	var creds Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid login payload")
	}
	session, err := h.svc.Login(c.Request().Context(), creds)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, session)
}

// -- Clinic --

func (h *Handler) ClinicProfile(c echo.Context) error {
	clinicID := auth.UserIDFromContext(c.Request().Context())
	clinic, err := h.svc.ClinicByID(c.Request().Context(), clinicID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) UpdateClinicProfile(c echo.Context) error {
	var upd ClinicUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile payload")
	}
	clinicID := auth.UserIDFromContext(c.Request().Context())
	clinic, err := h.svc.UpdateClinic(c.Request().Context(), clinicID, upd)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) ClinicDoctors(c echo.Context) error {
	clinicID := auth.UserIDFromContext(c.Request().Context())
	doctors, err := h.svc.DoctorsByClinic(c.Request().Context(), clinicID)
	if err != nil {
		return mapError(err)
	}
	if doctors == nil {
		doctors = []*Doctor{}
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) ClinicDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	clinicID := auth.UserIDFromContext(c.Request().Context())
	doctor, err := h.svc.DoctorForClinic(c.Request().Context(), clinicID, doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, doctor)
}

// -- Doctor --

func (h *Handler) DoctorProfile(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	doctor, err := h.svc.DoctorByID(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, doctor)
}

func (h *Handler) UpdateDoctorProfile(c echo.Context) error {
	var upd DoctorUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile payload")
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	doctor, err := h.svc.UpdateDoctor(c.Request().Context(), doctorID, upd)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, doctor)
}

// -- Customer --

func (h *Handler) CustomerProfile(c echo.Context) error {
	customerID := auth.UserIDFromContext(c.Request().Context())
	customer, err := h.svc.CustomerByID(c.Request().Context(), customerID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *Handler) UpdateCustomerProfile(c echo.Context) error {
	var upd CustomerUpdate
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid profile payload")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	customer, err := h.svc.UpdateCustomer(c.Request().Context(), customerID, upd)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, customer)
}

// -- Public directory --

func (h *Handler) SearchClinics(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Clinics(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchClinic(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("clinicId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	clinic, err := h.svc.ClinicByID(c.Request().Context(), clinicID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, clinic)
}

func (h *Handler) SearchClinicDoctors(c echo.Context) error {
	clinicID, err := uuid.Parse(c.Param("clinicId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid clinic id")
	}
	doctors, err := h.svc.DoctorsByClinic(c.Request().Context(), clinicID)
	if err != nil {
		return mapError(err)
	}
	if doctors == nil {
		doctors = []*Doctor{}
	}
	return c.JSON(http.StatusOK, doctors)
}

func (h *Handler) SearchDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.Doctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchDoctor(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	doctor, err := h.svc.DoctorByID(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, doctor)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
