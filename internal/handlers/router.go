package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/testing-service/internal/models"
	"github.com/SAP-F-2025/testing-service/internal/services"
	"github.com/SAP-F-2025/testing-service/internal/utils"
)

const serviceName = "testing-service"

type HandlerManager struct {
	serviceManager services.ServiceManager
	teacherHandler *TeacherHandler
	studentHandler *StudentHandler
	logger         utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		serviceManager: serviceManager,
		teacherHandler: NewTeacherHandler(serviceManager, logger),
		studentHandler: NewStudentHandler(serviceManager, logger),
		logger:         logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", hm.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())

	teacher := v1.Group("/teacher")
	teacher.Use(RequireRoleMiddleware(models.RoleTeacher))
	{
		teacher.GET("/dashboard", hm.teacherHandler.GetDashboard)

		teacher.GET("/students", hm.teacherHandler.ListStudents)
		teacher.GET("/students/available", hm.teacherHandler.ListAvailableStudents)
		teacher.POST("/students/:student_id", hm.teacherHandler.AttachStudent)
		teacher.DELETE("/students/:student_id", hm.teacherHandler.DetachStudent)

		teacher.GET("/tests", hm.teacherHandler.ListTests)
		teacher.POST("/tests", hm.teacherHandler.CreateTest)
		teacher.GET("/tests/:id", hm.teacherHandler.GetTest)
		teacher.DELETE("/tests/:id", hm.teacherHandler.DeleteTest)
		teacher.POST("/tests/:id/questions", hm.teacherHandler.AddQuestion)
		teacher.DELETE("/tests/:id/results/:student_id", hm.teacherHandler.ResetResult)

		teacher.DELETE("/questions/:id", hm.teacherHandler.DeleteQuestion)
		teacher.POST("/questions/:id/options", hm.teacherHandler.AddOption)
		teacher.DELETE("/options/:id", hm.teacherHandler.DeleteOption)

		teacher.GET("/results", hm.teacherHandler.ListResults)
		teacher.GET("/results/export", hm.teacherHandler.ExportResults)
	}

	student := v1.Group("/student")
	student.Use(RequireRoleMiddleware(models.RoleStudent))
	{
		student.GET("/dashboard", hm.studentHandler.GetDashboard)
		student.GET("/teachers", hm.studentHandler.ListTeachers)
		student.GET("/tests", hm.studentHandler.ListTests)
		student.GET("/tests/:id", hm.studentHandler.GetTest)
		student.POST("/tests/:id/submit", hm.studentHandler.SubmitTest)
		student.GET("/results", hm.studentHandler.ListResults)
	}
}

// HealthCheck reports whether the database is reachable
func (hm *HandlerManager) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		utils.GetLogger(c, hm.logger).Warn("Health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"service":   serviceName,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
