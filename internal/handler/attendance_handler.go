package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-records-api/internal/service"
	appErrors "github.com/noah-isme/campus-records-api/pkg/errors"
	"github.com/noah-isme/campus-records-api/pkg/export"
	"github.com/noah-isme/campus-records-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	csv        *export.CSVExporter
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, csv: export.NewCSVExporter()}
}

// Session godoc
// @Summary Per-student statuses for one session date
// @Tags Attendance
// @Produce json
// @Param courseId query string true "Course"
// @Param termId query string true "Term"
// @Param date query string true "Session date (YYYY-MM-DD)"
// @Param sectionId query string false "Section, or 'unassigned'"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) Session(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req := service.SessionRequest{
		CourseID:  c.Query("courseId"),
		TermID:    c.Query("termId"),
		Date:      c.Query("date"),
		SectionID: c.Query("sectionId"),
	}
	entries, err := h.attendance.Session(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// LowAttendance godoc
// @Summary Students below the attendance threshold
// @Tags Attendance
// @Produce json
// @Param courseId query string true "Course"
// @Param termId query string true "Term"
// @Param sectionId query string false "Section, or 'unassigned'"
// @Success 200 {object} response.Envelope
// @Router /attendance/low [get]
func (h *AttendanceHandler) LowAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req := service.LowAttendanceRequest{
		CourseID:  c.Query("courseId"),
		TermID:    c.Query("termId"),
		SectionID: c.Query("sectionId"),
	}
	rows, err := h.attendance.LowAttendance(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportLowAttendance godoc
// @Summary Download the low-attendance report as CSV
// @Tags Attendance
// @Produce text/csv
// @Param courseId query string true "Course"
// @Param termId query string true "Term"
// @Param sectionId query string false "Section, or 'unassigned'"
// @Success 200 {string} string "CSV content"
// @Router /attendance/low/export [get]
func (h *AttendanceHandler) ExportLowAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	req := service.LowAttendanceRequest{
		CourseID:  c.Query("courseId"),
		TermID:    c.Query("termId"),
		SectionID: c.Query("sectionId"),
	}
	rows, err := h.attendance.LowAttendance(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	dataset := export.Dataset{
		Headers: []string{"student_no", "name", "section", "attended", "total", "percentage"},
	}
	for _, row := range rows {
		studentNo := ""
		if row.StudentNo != nil {
			studentNo = *row.StudentNo
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"student_no": studentNo,
			"name":       row.Name,
			"section":    row.Section,
			"attended":   strconv.Itoa(row.Attended),
			"total":      strconv.Itoa(row.Total),
			"percentage": strconv.FormatFloat(row.Percentage, 'f', 2, 64),
		})
	}
	payload, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	filename := fmt.Sprintf("low-attendance-%s.csv", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// Save godoc
// @Summary Upsert a batch of attendance statuses
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.SaveAttendanceRequest true "Attendance batch"
// @Success 200 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.attendance.Save(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
