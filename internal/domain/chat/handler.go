package chat

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinichub/clinichub/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(doctor, customer *echo.Group) {
	doctor.GET("/chat", h.DoctorChats)
	doctor.POST("/chat/:customerId", h.DoctorOpenChat)
	doctor.GET("/chat/:chatId/message", h.DoctorMessages)
	doctor.POST("/chat/:chatId/message", h.DoctorPostMessage)

	customer.GET("/chat", h.CustomerChats)
	customer.POST("/chat/:doctorId", h.CustomerOpenChat)
	customer.GET("/chat/:chatId/message", h.CustomerMessages)
	customer.POST("/chat/:chatId/message", h.CustomerPostMessage)
}

type messageInput struct {
	Text string `json:"text"`
}

// -- Customer side --

func (h *Handler) CustomerChats(c echo.Context) error {
	customerID := auth.UserIDFromContext(c.Request().Context())
	chats, err := h.svc.ChatsByCustomer(c.Request().Context(), customerID)
	if err != nil {
		return mapError(err)
	}
	if chats == nil {
		chats = []*Chat{}
	}
	return c.JSON(http.StatusOK, chats)
}

func (h *Handler) CustomerOpenChat(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	ch, err := h.svc.OpenChatAsCustomer(c.Request().Context(), customerID, doctorID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) CustomerMessages(c echo.Context) error {
	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	messages, err := h.svc.MessagesAsCustomer(c.Request().Context(), customerID, chatID)
	if err != nil {
		return mapError(err)
	}
	if messages == nil {
		messages = []*Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *Handler) CustomerPostMessage(c echo.Context) error {
	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}
	var in messageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message payload")
	}
	customerID := auth.UserIDFromContext(c.Request().Context())
	messages, err := h.svc.PostMessageAsCustomer(c.Request().Context(), customerID, chatID, in.Text)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// -- Doctor side --

func (h *Handler) DoctorChats(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	chats, err := h.svc.ChatsByDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return mapError(err)
	}
	if chats == nil {
		chats = []*Chat{}
	}
	return c.JSON(http.StatusOK, chats)
}

func (h *Handler) DoctorOpenChat(c echo.Context) error {
	customerID, err := uuid.Parse(c.Param("customerId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid customer id")
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	ch, err := h.svc.OpenChatAsDoctor(c.Request().Context(), doctorID, customerID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) DoctorMessages(c echo.Context) error {
	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	messages, err := h.svc.MessagesAsDoctor(c.Request().Context(), doctorID, chatID)
	if err != nil {
		return mapError(err)
	}
	if messages == nil {
		messages = []*Message{}
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *Handler) DoctorPostMessage(c echo.Context) error {
	chatID, err := uuid.Parse(c.Param("chatId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}
	var in messageInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message payload")
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	messages, err := h.svc.PostMessageAsDoctor(c.Request().Context(), doctorID, chatID, in.Text)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoAppointment), errors.Is(err, ErrEmptyMessage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
