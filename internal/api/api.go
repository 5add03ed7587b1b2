package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"schedule-service/internal/service"
)

type Handler struct {
	userService     service.UserService
	scheduleService service.ScheduleService
}

// NewHandler creates a new instance of Handler
func NewHandler(userService service.UserService, scheduleService service.ScheduleService) *Handler {
	return &Handler{userService: userService, scheduleService: scheduleService}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a new user --> POST /register
func (h *Handler) Register(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	_, err := h.userService.Register(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateUsername) {
			return c.JSON(400, map[string]string{"msg": "Username already exists"})
		}
		return internalError(c, err)
	}

	return c.JSON(201, map[string]string{"msg": "User registered successfully"})
}

// Login logs in a user --> POST /login
func (h *Handler) Login(c echo.Context) error {
	creds := credentials{}
	if err := c.Bind(&creds); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	token, err := h.userService.Login(c.Request().Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(401, map[string]string{"msg": "Invalid credentials"})
		}
		return internalError(c, err)
	}

	return c.JSON(200, map[string]string{"access_token": token})
}

// ValidateSession validates a cached session token --> GET /session/validate
func (h *Handler) ValidateSession(c echo.Context) error {
	token := c.Request().Header.Get("Authorization")
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	if err := h.userService.ValidateSession(c.Request().Context(), token); err != nil {
		return c.JSON(401, map[string]string{"error": err.Error()})
	}

	return c.JSON(200, map[string]string{"message": "Session is valid"})
}

// CreateSchedule creates a schedule for the caller --> POST /schedules
func (h *Handler) CreateSchedule(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	body := struct {
		Title string `json:"title"`
		Date  string `json:"date"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	_, err = h.scheduleService.CreateSchedule(c.Request().Context(), userID, body.Title, body.Date)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(400, map[string]string{"msg": "title and date are required"})
		}
		return internalError(c, err)
	}

	return c.JSON(201, map[string]string{"msg": "Schedule added"})
}

// GetSchedules lists the caller's schedules --> GET /schedules
func (h *Handler) GetSchedules(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	schedules, err := h.scheduleService.ListSchedules(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(200, schedules)
}

// DeleteSchedule deletes one of the caller's schedules --> DELETE /schedules/:id
func (h *Handler) DeleteSchedule(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	if err := h.scheduleService.DeleteSchedule(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(404, map[string]string{"msg": "Schedule not found"})
		}
		return internalError(c, err)
	}

	return c.JSON(200, map[string]string{"msg": "Schedule deleted"})
}

// GetFriendSchedules lists any user's schedules --> GET /friends_schedules/:user_id
func (h *Handler) GetFriendSchedules(c echo.Context) error {
	if _, err := callerID(c); err != nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	friendID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid ID"})
	}

	schedules, err := h.scheduleService.ListForUser(c.Request().Context(), friendID)
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(200, schedules)
}

// callerID extracts the authenticated user id set by the JWT middleware.
func callerID(c echo.Context) (int, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, errors.New("missing token")
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok || claims.UserID == 0 {
		return 0, errors.New("invalid claims")
	}
	return claims.UserID, nil
}

// internalError answers every unexpected failure, storage faults included,
// with the same opaque body so error details never reach clients.
func internalError(c echo.Context, err error) error {
	return c.JSON(500, map[string]string{"msg": "internal error"})
}
