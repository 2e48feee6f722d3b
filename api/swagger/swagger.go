package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Ledger API",
        "description": "Record ledger service: attendance, assessments, fees and announcements",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Local account login"},
        {"name": "Attendance", "description": "Per-person daily attendance ledger"},
        {"name": "Assessments", "description": "Tests and their marks"},
        {"name": "Fees", "description": "Per-month fee challan lifecycle"},
        {"name": "Announcements", "description": "Audience-scoped announcement distribution"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark or correct attendance for (personId, date)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Policy violation (student rest day)"}
                }
            }
        },
        "/attendance/{personId}/history": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance history, newest first",
                "parameters": [
                    {"name": "personId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{personId}/stats": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Monthly attendance statistics",
                "parameters": [
                    {"name": "personId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tests": {
            "get": {
                "tags": ["Assessments"],
                "summary": "List tests",
                "parameters": [
                    {"name": "className", "in": "query", "type": "string"},
                    {"name": "section", "in": "query", "type": "string"},
                    {"name": "owner", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assessments"],
                "summary": "Create test",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTestRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tests/{id}": {
            "get": {
                "tags": ["Assessments"],
                "summary": "Get test with marks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["Assessments"],
                "summary": "Delete test",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tests/{id}/marks": {
            "put": {
                "tags": ["Assessments"],
                "summary": "Replace the test's marks wholesale",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "number"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Score outside [0, totalMarks]"}
                }
            },
            "delete": {
                "tags": ["Assessments"],
                "summary": "Clear the test's marks",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/fees/defaults/{className}": {
            "put": {
                "tags": ["Fees"],
                "summary": "Set default challan amount for a class",
                "parameters": [
                    {"name": "className", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"amount": {"type": "number"}}}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/fees/challans": {
            "post": {
                "tags": ["Fees"],
                "summary": "Generate challans for a batch of students",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateChallansRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-student results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{studentId}/{month}": {
            "get": {
                "tags": ["Fees"],
                "summary": "Fee status for a student and month",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{studentId}/{month}/proof": {
            "post": {
                "tags": ["Fees"],
                "summary": "Submit payment proof",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"proof_ref": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/{studentId}/{month}/verify": {
            "post": {
                "tags": ["Fees"],
                "summary": "Approve or reject a submitted proof",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"approve": {"type": "boolean"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record is not awaiting verification"}
                }
            }
        },
        "/fees/summary/{month}": {
            "get": {
                "tags": ["Fees"],
                "summary": "Per-status counts for a billing month",
                "parameters": [
                    {"name": "month", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements": {
            "get": {
                "tags": ["Announcements"],
                "summary": "List announcements visible to the viewer",
                "parameters": [
                    {"name": "audience", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Announcements"],
                "summary": "Publish announcement",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PublishAnnouncementRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/{id}": {
            "put": {
                "tags": ["Announcements"],
                "summary": "Edit announcement content",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAnnouncementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Announcements"],
                "summary": "Delete announcement",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/announcements/stream": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Live announcement stream (SSE)",
                "produces": ["text/event-stream"],
                "parameters": [
                    {"name": "audience", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/announcements/unread": {
            "get": {
                "tags": ["Announcements"],
                "summary": "Unread announcement count for the viewer",
                "parameters": [
                    {"name": "category", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/announcements/seen": {
            "post": {
                "tags": ["Announcements"],
                "summary": "Advance the viewer's seen watermark",
                "parameters": [
                    {"name": "payload", "in": "body", "schema": {"type": "object", "properties": {"category": {"type": "string"}}}}
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
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "properties": {
                "person_id": {"type": "string"},
                "date": {"type": "string", "description": "YYYY-MM-DD"},
                "status": {"type": "string", "enum": ["present", "absent"]},
                "kind": {"type": "string", "enum": ["student", "staff"]}
            },
            "required": ["person_id", "date", "status", "kind"]
        },
        "CreateTestRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "subject": {"type": "string"},
                "date": {"type": "string"},
                "total_marks": {"type": "integer"},
                "class_name": {"type": "string"},
                "section": {"type": "string"}
            },
            "required": ["name", "subject", "date", "class_name"]
        },
        "GenerateChallansRequest": {
            "type": "object",
            "properties": {
                "student_ids": {"type": "array", "items": {"type": "string"}},
                "month": {"type": "string", "description": "YYYY-MM"},
                "amount": {"type": "number"},
                "class_name": {"type": "string"}
            },
            "required": ["student_ids", "month"]
        },
        "PublishAnnouncementRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "medium", "high"]},
                "audience": {"type": "string", "description": "global or a class name"},
                "date": {"type": "string"}
            },
            "required": ["title", "body", "priority", "audience"]
        },
        "UpdateAnnouncementRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "body": {"type": "string"},
                "priority": {"type": "string", "enum": ["low", "medium", "high"]},
                "date": {"type": "string"}
            },
            "required": ["title", "body", "priority"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {"type": "object"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
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
