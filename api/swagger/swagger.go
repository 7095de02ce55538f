package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Campus Records API",
        "description": "Section-scoped attendance and grade records for the campus portal",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login and token lifecycle"},
        {"name": "Courses", "description": "Instructor course listing"},
        {"name": "Terms", "description": "Academic terms"},
        {"name": "Attendance", "description": "Session records and low-attendance reports"},
        {"name": "Grades", "description": "Gradebook and itemized marks"},
        {"name": "Notes", "description": "Private faculty notes"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses/mine": {
            "get": {
                "tags": ["Courses"],
                "summary": "Courses taught by the authenticated instructor",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms": {
            "get": {
                "tags": ["Terms"],
                "summary": "All academic terms, most recent first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/terms/active": {
            "get": {
                "tags": ["Terms"],
                "summary": "The currently active term",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Per-student statuses for one session date",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "date", "in": "query", "type": "string", "required": true},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Upsert a batch of attendance statuses",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance/low": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Students below the attendance threshold",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/attendance/low/export": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download the low-attendance report as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV content"}
                }
            }
        },
        "/api/v1/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "Current grades for each visible student",
                "parameters": [
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true},
                    {"name": "sectionId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Upsert a batch of grades",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveGradesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/students/{id}/marks": {
            "get": {
                "tags": ["Grades"],
                "summary": "Itemized marks per enrolled course with class statistics",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notes": {
            "get": {
                "tags": ["Notes"],
                "summary": "Notes the faculty member wrote for a student",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string", "required": true},
                    {"name": "courseId", "in": "query", "type": "string", "required": true},
                    {"name": "termId", "in": "query", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Notes"],
                "summary": "Add a private note about a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateNoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/notes/{id}": {
            "delete": {
                "tags": ["Notes"],
                "summary": "Delete one of the faculty member's notes",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "RefreshTokenRequest": {
            "type": "object",
            "required": ["refresh_token"],
            "properties": {
                "refresh_token": {"type": "string"}
            }
        },
        "SaveAttendanceRequest": {
            "type": "object",
            "required": ["course_id", "term_id", "date", "entries"],
            "properties": {
                "course_id": {"type": "string"},
                "term_id": {"type": "string"},
                "date": {"type": "string", "example": "2025-09-01"},
                "section_id": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/AttendanceEntry"}
                }
            }
        },
        "AttendanceEntry": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "status": {"type": "string", "enum": ["present", "absent", "late"]}
            }
        },
        "SaveGradesRequest": {
            "type": "object",
            "required": ["course_id", "term_id", "entries"],
            "properties": {
                "course_id": {"type": "string"},
                "term_id": {"type": "string"},
                "section_id": {"type": "string"},
                "entries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeEntry"}
                }
            }
        },
        "GradeEntry": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "grade": {"type": "string", "example": "A-"}
            }
        },
        "CreateNoteRequest": {
            "type": "object",
            "required": ["student_id", "course_id", "term_id", "body"],
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "term_id": {"type": "string"},
                "body": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
