package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/service"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// GradeHandler exposes gradebook and marks endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Gradebook godoc
// @Summary Current grades for each visible student
// @Tags Grades
// @Produce json
// @Param courseId query string true "Course"
// @Param termId query string true "Term"
// @Param sectionId query string false "Section, or 'unassigned'"
// @Success 200 {object} response.Envelope
// @Router /grades [get]
func (h *GradeHandler) Gradebook(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req := service.GradebookRequest{
		CourseID:  c.Query("courseId"),
		TermID:    c.Query("termId"),
		SectionID: c.Query("sectionId"),
	}
	rows, err := h.grades.Gradebook(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Save godoc
// @Summary Upsert a batch of grades
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body service.SaveGradesRequest true "Grades batch"
// @Success 200 {object} response.Envelope
// @Router /grades [post]
func (h *GradeHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SaveGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.grades.SaveGrades(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// StudentMarks godoc
// @Summary Itemized marks per enrolled course with class statistics
// @Tags Grades
// @Produce json
// @Param id path string true "Student user id"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/marks [get]
func (h *GradeHandler) StudentMarks(c *gin.Context) {
	studentID := c.Param("id")
	marks, err := h.grades.StudentMarks(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}
