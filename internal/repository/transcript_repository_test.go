package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-records-api/internal/models"
)

func transcriptMockColumns() []string {
	return []string{
		"id", "student_id", "course_id", "term_id", "grade", "grade_points",
		"assignment1", "assignment2", "quiz1", "quiz2", "quiz3", "quiz4",
		"midterm1", "midterm2", "final_exam", "grace_marks",
		"status", "created_at", "updated_at",
	}
}

func TestTranscriptRepositoryListByCourseTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	rows := sqlmock.NewRows(transcriptMockColumns()).
		AddRow("tr-1", "stu-1", "course-1", "term-1", "A-", 3.67,
			9.5, nil, 5.0, nil, nil, nil, 18.0, nil, 42.0, 1.5,
			"final", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM transcripts WHERE course_id = $1 AND term_id = $2")).
		WithArgs("course-1", "term-1").
		WillReturnRows(rows)

	transcripts, err := repo.ListByCourseTerm(context.Background(), "course-1", "term-1")
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	require.NotNil(t, transcripts[0].Grade)
	assert.Equal(t, "A-", *transcripts[0].Grade)
	assert.Nil(t, transcripts[0].Assignment2)
	assert.Equal(t, models.TranscriptStatusFinal, transcripts[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	rows := sqlmock.NewRows(transcriptMockColumns()).
		AddRow("tr-1", "stu-1", "course-1", "term-1", nil, nil,
			nil, nil, nil, nil, nil, nil, nil, nil, nil, nil,
			"draft", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM transcripts WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	transcripts, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	assert.Nil(t, transcripts[0].Grade)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptRepositoryBulkUpsertGrades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	grade := "B+"
	points := 3.33
	entries := []models.GradeWrite{
		{StudentID: "stu-1", CourseID: "course-1", TermID: "term-1", Grade: &grade, GradePoints: &points, Status: models.TranscriptStatusDraft},
		{StudentID: "stu-2", CourseID: "course-1", TermID: "term-1"},
	}

	mock.ExpectBegin()
	upsert := regexp.QuoteMeta("INSERT INTO transcripts (id, student_id, course_id, term_id, grade, grade_points, status, created_at, updated_at)")
	mock.ExpectExec(upsert).
		WithArgs(sqlmock.AnyArg(), "stu-1", "course-1", "term-1", &grade, &points, models.TranscriptStatusDraft, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Empty status defaults to draft on write.
	mock.ExpectExec(upsert).
		WithArgs(sqlmock.AnyArg(), "stu-2", "course-1", "term-1", nil, nil, models.TranscriptStatusDraft, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	saved, err := repo.BulkUpsertGrades(context.Background(), entries)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranscriptRepositoryBulkUpsertGradesEmptyBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTranscriptRepository(db)

	saved, err := repo.BulkUpsertGrades(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, saved)
	require.NoError(t, mock.ExpectationsWereMet())
}
