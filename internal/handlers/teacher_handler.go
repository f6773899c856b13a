package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/testing-service/internal/services"
	"github.com/SAP-F-2025/testing-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type TeacherHandler struct {
	BaseHandler
	assignment services.AssignmentService
	authoring  services.AuthoringService
	attempt    services.AttemptService
	projection services.ProjectionService
	export     services.ExportService
}

func NewTeacherHandler(serviceManager services.ServiceManager, logger utils.Logger) *TeacherHandler {
	return &TeacherHandler{
		BaseHandler: NewBaseHandler(logger),
		assignment:  serviceManager.Assignment(),
		authoring:   serviceManager.Authoring(),
		attempt:     serviceManager.Attempt(),
		projection:  serviceManager.Projection(),
		export:      serviceManager.Export(),
	}
}

// ===== DASHBOARD =====

// GetDashboard returns counters for the current teacher
// @Summary Get teacher dashboard
// @Tags teacher
// @Produce json
// @Success 200 {object} models.TeacherDashboardResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Teacher profile not found"
// @Router /teacher/dashboard [get]
func (h *TeacherHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting teacher dashboard")

	dashboard, err := h.projection.TeacherDashboard(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// ===== STUDENTS =====

// ListStudents returns the students attached to the current teacher with
// their result statistics
// @Summary List attached students
// @Tags teacher
// @Produce json
// @Success 200 {array} models.TeacherStudentResponse
// @Router /teacher/students [get]
func (h *TeacherHandler) ListStudents(c *gin.Context) {
	h.LogRequest(c, "Listing attached students")

	students, err := h.assignment.ListStudentsOf(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// ListAvailableStudents returns every student not yet attached
// @Summary List unattached students
// @Tags teacher
// @Produce json
// @Success 200 {array} models.TeacherStudentResponse
// @Router /teacher/students/available [get]
func (h *TeacherHandler) ListAvailableStudents(c *gin.Context) {
	h.LogRequest(c, "Listing unattached students")

	students, err := h.assignment.ListUnassignedStudents(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, students)
}

// AttachStudent links a student to the current teacher. Attaching twice is
// not an error.
// @Summary Attach student
// @Tags teacher
// @Param student_id path uint true "Student ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /teacher/students/{student_id} [post]
func (h *TeacherHandler) AttachStudent(c *gin.Context) {
	h.LogRequest(c, "Attaching student")

	studentID, ok := h.parseIDParam(c, "student_id")
	if !ok {
		return
	}

	if err := h.assignment.Attach(c.Request.Context(), c.GetString(contextUserID), studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Student attached", nil)
}

// DetachStudent removes the link between a student and the current teacher
// @Summary Detach student
// @Tags teacher
// @Param student_id path uint true "Student ID"
// @Success 200 {object} SuccessResponse
// @Router /teacher/students/{student_id} [delete]
func (h *TeacherHandler) DetachStudent(c *gin.Context) {
	h.LogRequest(c, "Detaching student")

	studentID, ok := h.parseIDParam(c, "student_id")
	if !ok {
		return
	}

	if err := h.assignment.Detach(c.Request.Context(), c.GetString(contextUserID), studentID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Student detached", nil)
}

// ===== TESTS =====

// ListTests returns the tests owned by the current teacher
// @Summary List own tests
// @Tags teacher
// @Produce json
// @Success 200 {array} models.TeacherTestResponse
// @Router /teacher/tests [get]
func (h *TeacherHandler) ListTests(c *gin.Context) {
	h.LogRequest(c, "Listing own tests")

	tests, err := h.authoring.ListTests(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tests)
}

// CreateTest creates an empty test owned by the current teacher
// @Summary Create test
// @Tags teacher
// @Accept json
// @Produce json
// @Param test body models.TestCreateRequest true "Test data"
// @Success 201 {object} models.TeacherTestResponse
// @Failure 400 {object} ErrorResponse "Validation failed"
// @Router /teacher/tests [post]
func (h *TeacherHandler) CreateTest(c *gin.Context) {
	h.LogRequest(c, "Creating test")

	var req services.CreateTestRequest
	if !h.bindJSON(c, &req) {
		return
	}

	test, err := h.authoring.CreateTest(c.Request.Context(), c.GetString(contextUserID), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, test)
}

// GetTest returns the editor view of an owned test, correct options included
// @Summary Get test for editing
// @Tags teacher
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} models.TestEditorResponse
// @Failure 403 {object} ErrorResponse "Not the owner"
// @Failure 404 {object} ErrorResponse "Test not found"
// @Router /teacher/tests/{id} [get]
func (h *TeacherHandler) GetTest(c *gin.Context) {
	h.LogRequest(c, "Getting test for editing")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	test, err := h.authoring.GetTestForEditing(c.Request.Context(), c.GetString(contextUserID), testID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, test)
}

// DeleteTest removes an owned test that has no submitted results
// @Summary Delete test
// @Tags teacher
// @Param id path uint true "Test ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse "Test has results"
// @Router /teacher/tests/{id} [delete]
func (h *TeacherHandler) DeleteTest(c *gin.Context) {
	h.LogRequest(c, "Deleting test")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.authoring.DeleteTest(c.Request.Context(), c.GetString(contextUserID), testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Test deleted", nil)
}

// ===== QUESTIONS & OPTIONS =====

// AddQuestion appends a question to an owned test
// @Summary Add question
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path uint true "Test ID"
// @Param question body models.QuestionCreateRequest true "Question data"
// @Success 201 {object} models.EditorQuestionResponse
// @Router /teacher/tests/{id}/questions [post]
func (h *TeacherHandler) AddQuestion(c *gin.Context) {
	h.LogRequest(c, "Adding question")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateQuestionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	question, err := h.authoring.AddQuestion(c.Request.Context(), c.GetString(contextUserID), testID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// @Summary Delete question
// @Tags teacher
// @Param id path uint true "Question ID"
// @Success 200 {object} SuccessResponse
// @Router /teacher/questions/{id} [delete]
func (h *TeacherHandler) DeleteQuestion(c *gin.Context) {
	h.LogRequest(c, "Deleting question")

	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.authoring.DeleteQuestion(c.Request.Context(), c.GetString(contextUserID), questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Question deleted", nil)
}

// @Summary Add option
// @Tags teacher
// @Accept json
// @Produce json
// @Param id path uint true "Question ID"
// @Param option body models.OptionCreateRequest true "Option data"
// @Success 201 {object} models.EditorOptionResponse
// @Router /teacher/questions/{id}/options [post]
func (h *TeacherHandler) AddOption(c *gin.Context) {
	h.LogRequest(c, "Adding option")

	questionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.CreateOptionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	option, err := h.authoring.AddOption(c.Request.Context(), c.GetString(contextUserID), questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, option)
}

// @Summary Delete option
// @Tags teacher
// @Param id path uint true "Option ID"
// @Success 200 {object} SuccessResponse
// @Router /teacher/options/{id} [delete]
func (h *TeacherHandler) DeleteOption(c *gin.Context) {
	h.LogRequest(c, "Deleting option")

	optionID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.authoring.DeleteOption(c.Request.Context(), c.GetString(contextUserID), optionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Option deleted", nil)
}

// ===== RESULTS =====

// ResetResult deletes a student's result so the test can be taken again
// @Summary Reset attempt
// @Tags teacher
// @Param id path uint true "Test ID"
// @Param student_id path uint true "Student ID"
// @Success 200 {object} SuccessResponse
// @Router /teacher/tests/{id}/results/{student_id} [delete]
func (h *TeacherHandler) ResetResult(c *gin.Context) {
	h.LogRequest(c, "Resetting attempt")

	testID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	studentID, ok := h.parseIDParam(c, "student_id")
	if !ok {
		return
	}

	if err := h.attempt.Reset(c.Request.Context(), c.GetString(contextUserID), studentID, testID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondSuccess(c, http.StatusOK, "Attempt reset", nil)
}

// @Summary List results of own tests
// @Tags teacher
// @Produce json
// @Success 200 {array} models.TeacherResultResponse
// @Router /teacher/results [get]
func (h *TeacherHandler) ListResults(c *gin.Context) {
	h.LogRequest(c, "Listing teacher results")

	results, err := h.projection.TeacherResults(c.Request.Context(), c.GetString(contextUserID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportResults streams the teacher's results as an xlsx workbook. The
// workbook is rendered in memory first so a failure still yields a JSON error.
// @Summary Export results
// @Tags teacher
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /teacher/results/export [get]
func (h *TeacherHandler) ExportResults(c *gin.Context) {
	h.LogRequest(c, "Exporting teacher results")

	var buf bytes.Buffer
	if err := h.export.ExportTeacherResults(c.Request.Context(), c.GetString(contextUserID), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("results-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
