package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/services"
	"github.com/SAP-F-2025/testing-service/internal/utils"
)

type StudentHandler struct {
	BaseHandler
	assignment services.AssignmentService
	attempt    services.AttemptService
	projection services.ProjectionService
}

func NewStudentHandler(serviceManager services.ServiceManager, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		assignment:  serviceManager.Assignment(),
		attempt:     serviceManager.Attempt(),
		projection:  serviceManager.Projection(),
	}
}

// submitTestBody is the submit payload; the test id comes from the path
type submitTestBody struct {
	Answers models.Answers `json:"answers"`
}

// ===== STUDENT ENDPOINTS =====

// GetDashboard returns counters for the current student
// @Summary Get student dashboard
// @Tags student
// @Produce json
// @Success 200 {object} models.StudentDashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Student profile not found"
// @Router /student/dashboard [get]
func (h *StudentHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting student dashboard")

	dashboard, err := h.projection.StudentDashboard(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ListTeachers returns the teachers the current student is attached to
// @Summary List teachers
// @Tags student
// @Produce json
// @Success 200 {array} models.StudentTeacherResponse
// @Router /student/teachers [get]
func (h *StudentHandler) ListTeachers(c *gin.Context) {
	h.LogRequest(c, "Listing student teachers")

	teachers, err := h.assignment.ListTeachersOf(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, teachers)
}

// ListTests returns every test reachable through the student's teachers
// @Summary List available tests
// @Tags student
// @Produce json
// @Success 200 {array} models.StudentAvailableTestResponse
// @Router /student/tests [get]
func (h *StudentHandler) ListTests(c *gin.Context) {
	h.LogRequest(c, "Listing available tests")

	tests, err := h.projection.StudentAvailableTests(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// GetTest opens a test. Correct options are never included, and a completed
// test returns its outcome without the questions.
// @Summary Open test
// @Tags student
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} models.StudentTestResponse
// @Failure 403 {object} ErrorResponse "Test not visible"
// @Failure 404 {object} ErrorResponse "Test not found"
// @Router /student/tests/{id} [get]
func (h *StudentHandler) GetTest(c *gin.Context) {
	h.LogRequest(c, "Opening test")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.attempt.GetTest(c.Request.Context(), c.GetString(contextUserID), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// SubmitTest scores and stores the student's single attempt
// @Summary Submit test
// @Tags student
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param answers body submitTestBody true "Chosen option per question"
// @Success 201 {object} models.SubmitTestResponse
// @Failure 409 {object} ErrorResponse "Already submitted"
// @Router /student/tests/{id}/submit [post]
func (h *StudentHandler) SubmitTest(c *gin.Context) {
	h.LogRequest(c, "Submitting test")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var body submitTestBody
	if !h.bindJSON(c, &body) {
		return
	}

	result, err := h.attempt.Submit(c.Request.Context(), c.GetString(contextUserID), &services.SubmitTestRequest{
		TestID:  testID,
		Answers: body.Answers,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary List own results
// @Tags student
// @Produce json
// @Success 200 {array} models.StudentResultResponse
// @Router /student/results [get]
func (h *StudentHandler) ListResults(c *gin.Context) {
	h.LogRequest(c, "Listing student results")

	results, err := h.projection.StudentResults(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}
