package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/service"
	"github.com/noah-isme/campus-api/internal/timetable"
	"github.com/noah-isme/campus-api/internal/utils"
)

// ScheduleHandler wires teacher-student assignment and timetable routes.
type ScheduleHandler struct {
	service service.ScheduleService
	logger  zerolog.Logger
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(service service.ScheduleService, logger zerolog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		logger:  logger.With().Str("component", "schedule_handler").Logger(),
	}
}

// Register attaches schedule endpoints to the router group.
func (h *ScheduleHandler) Register(router fiber.Router) {
	teacher := middleware.AuthOptions{Role: middleware.AuthRoleTeacher}
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}

	router.Post("/assignments", middleware.WithAuth(h.assign, teacher))
	router.Delete("/assignments/:courseId/:studentId", middleware.WithAuth(h.unassign, teacher))
	router.Get("/timetable", middleware.WithAuth(h.timetable, student))
}

func (h *ScheduleHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignStudentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	assignment, err := h.service.Assign(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("student_id", assignment.StudentID).
		Str("day", assignment.DayOfWeek).
		Str("slot", assignment.TimeSlot).
		Msg("student assigned")

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "student assigned", assignment)
}

func (h *ScheduleHandler) unassign(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	payload := dto.AssignStudentRequest{StudentID: studentID, CourseID: courseID}
	if err := h.service.Unassign(withRequestContext(c), userIDFromContext(c), payload); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "student unassigned", payload)
}

func (h *ScheduleHandler) timetable(c *fiber.Ctx) error {
	entries, err := h.service.Timetable(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return internalError(c, h.logger, err)
	}
	return utils.SendSuccess(c, "timetable retrieved", entries)
}

func (h *ScheduleHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case isValidationError(err):
		return validationFailure(c, err)
	case errors.Is(err, timetable.ErrNoSlotAvailable):
		return utils.SendError(c, fiber.StatusConflict, "student schedule is full")
	case errors.Is(err, service.ErrAlreadyAssigned), errors.Is(err, service.ErrScheduleConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrScheduleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		return internalError(c, h.logger, err)
	}
}
