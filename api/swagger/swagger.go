package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Smart Mavi Timetable API",
        "description": "Weekly class timetable generation, storage and export",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Timetables", "description": "Proposal generation and saved timetables"},
        {"name": "Exports", "description": "Asynchronous CSV and PDF exports"}
    ],
    "paths": {
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate a timetable proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/proposals/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a proposal, optionally narrowed to one class or teacher",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "classId", "in": "query", "type": "integer"},
                    {"name": "teacherId", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Proposal expired", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/proposals/{id}/regenerate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Regenerate a proposal with a new seed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/RegenerateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List saved timetables",
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Timetables"],
                "summary": "Save a proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveTimetableRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/{id}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get a saved timetable with its lessons",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Timetables"],
                "summary": "Delete a saved timetable",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/timetables/{id}/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Download a saved timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "view", "in": "query", "type": "string", "enum": ["entries", "grid", "teacher-grid"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a timetable export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export with a signed token",
                "security": [],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SubjectInput": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            },
            "required": ["id", "name"]
        },
        "TeacherInput": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "subjectIds": {"type": "array", "items": {"type": "integer"}}
            },
            "required": ["id", "name"]
        },
        "ClassInput": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "grade": {"type": "string"}
            },
            "required": ["id", "name"]
        },
        "TimingInput": {
            "type": "object",
            "properties": {
                "days": {"type": "array", "items": {"type": "string"}, "example": ["SUNDAY", "MONDAY"]},
                "schoolStart": {"type": "string", "example": "08:00"},
                "schoolEnd": {"type": "string", "example": "15:00"},
                "periodDuration": {"type": "integer", "example": 45},
                "breakStart": {"type": "string", "example": "10:15"},
                "breakDuration": {"type": "integer", "example": 15},
                "lunchStart": {"type": "string", "example": "12:00"},
                "lunchDuration": {"type": "integer", "example": 30},
                "maxPeriodsPerDay": {"type": "integer", "example": 8},
                "maxPeriodsPerTeacherPerDay": {"type": "integer", "example": 6}
            }
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "seed": {"type": "integer", "format": "int64"},
                "subjects": {"type": "array", "items": {"$ref": "#/definitions/SubjectInput"}},
                "teachers": {"type": "array", "items": {"$ref": "#/definitions/TeacherInput"}},
                "classes": {"type": "array", "items": {"$ref": "#/definitions/ClassInput"}},
                "timing": {"$ref": "#/definitions/TimingInput"}
            },
            "required": ["subjects", "teachers", "classes"]
        },
        "RegenerateRequest": {
            "type": "object",
            "properties": {
                "seed": {"type": "integer", "format": "int64"}
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "proposalId": {"type": "string"},
                "name": {"type": "string"}
            },
            "required": ["proposalId"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "timetableId": {"type": "string", "format": "uuid"},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "view": {"type": "string", "enum": ["entries", "grid", "teacher-grid"]}
            },
            "required": ["timetableId", "format"]
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
