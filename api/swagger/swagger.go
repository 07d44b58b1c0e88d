package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Student Records API",
        "description": "CRUD and status management for student records",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student record management"},
        {"name": "Reports", "description": "Downloadable student documents"}
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
                    "200": {"description": "Database reachable"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Student"}}},
                    "500": {"description": "Internal error", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the student roster",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"in": "query", "name": "format", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student detail",
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Invalid id", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "No student with this id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "description": "Only the supplied fields change. PATCH is accepted as an alias.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "No student with this id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/{id}/status": {
            "patch": {
                "tags": ["Students"],
                "summary": "Change student status",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true},
                    {"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/SetStudentStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "No student with this id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/students/{id}/report": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a student detail report",
                "produces": ["application/pdf"],
                "parameters": [
                    {"in": "path", "name": "id", "type": "integer", "required": true}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "404": {"description": "No student with this id", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "format": "int64"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "gender": {"type": "string", "enum": ["M", "F", ""]},
                "class": {"type": "string"},
                "birth_date": {"type": "string", "format": "date-time", "x-nullable": true},
                "enrollment_date": {"type": "string", "format": "date-time", "x-nullable": true},
                "status": {"type": "string", "enum": ["active", "inactive"]},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "CreateStudentRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "gender": {"type": "string", "enum": ["M", "F"]},
                "class": {"type": "string"},
                "birth_date": {"type": "string", "format": "date-time"},
                "enrollment_date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "gender": {"type": "string", "enum": ["M", "F"]},
                "class": {"type": "string"},
                "birth_date": {"type": "string", "format": "date-time"},
                "enrollment_date": {"type": "string", "format": "date-time"}
            }
        },
        "SetStudentStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["active", "inactive"]}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
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
