package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Inventory Reconciliation API",
        "description": "Verification tickets, counting grants and count reconciliation",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Tickets", "description": "Verification ticket lifecycle"},
        {"name": "Counts", "description": "Physical counts and reconciliation"},
        {"name": "Assignments", "description": "Counting grants by taxonomy scope"},
        {"name": "Dashboard", "description": "Aggregated rollups"},
        {"name": "Exports", "description": "Count report downloads"}
    ],
    "paths": {
        "/tickets": {
            "get": {
                "tags": ["Tickets"],
                "summary": "List tickets",
                "parameters": [
                    {"name": "store_code", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "priority", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Tickets"],
                "summary": "Create ticket",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTicketRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tickets/{id}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Get ticket with codes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/tickets/number/{number}": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Get ticket by number",
                "parameters": [
                    {"name": "number", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tickets/{id}/status": {
            "patch": {
                "tags": ["Tickets"],
                "summary": "Override ticket status (DEVUELTO or CANCELADO)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/tickets/{id}/close": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Close ticket once every code is processed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/tickets/{id}/comments": {
            "post": {
                "tags": ["Tickets"],
                "summary": "Add ticket or code comment",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddCommentRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tickets/{id}/history": {
            "get": {
                "tags": ["Tickets"],
                "summary": "Get ticket audit trail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/tickets/{id}/codes/{codeId}/status": {
            "patch": {
                "tags": ["Tickets"],
                "summary": "Move code through its status machine",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "codeId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/tickets/{id}/codes/{codeId}/assign": {
            "put": {
                "tags": ["Tickets"],
                "summary": "Manually assign code to a user",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "codeId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignCodeRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/tickets/{id}/counts/materialize": {
            "post": {
                "tags": ["Counts"],
                "summary": "Materialize count rows for the ticket's codes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Catalog unavailable"}
                }
            }
        },
        "/tickets/{id}/counts": {
            "get": {
                "tags": ["Counts"],
                "summary": "List the ticket's counts",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counts": {
            "get": {
                "tags": ["Counts"],
                "summary": "List counts",
                "parameters": [
                    {"name": "store_code", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "has_difference", "in": "query", "type": "boolean"},
                    {"name": "counted", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counts/batch": {
            "post": {
                "tags": ["Counts"],
                "summary": "Register many physical quantities best-effort",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/BatchRegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/counts/{id}/register": {
            "put": {
                "tags": ["Counts"],
                "summary": "Register a physical quantity",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterCountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/counts/{id}/status": {
            "patch": {
                "tags": ["Counts"],
                "summary": "Move count through its review machine",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/counts/{id}/history": {
            "get": {
                "tags": ["Counts"],
                "summary": "Get count audit trail",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Assignments"],
                "summary": "List counting grants",
                "parameters": [
                    {"name": "user_id", "in": "query", "type": "integer"},
                    {"name": "store_code", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "include_inactive", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Assignments"],
                "summary": "Create counting grant",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGrantRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments/{id}": {
            "delete": {
                "tags": ["Assignments"],
                "summary": "Deactivate counting grant",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get the reconciliation dashboard",
                "parameters": [
                    {"name": "store_code", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/counts": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export counts as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string"},
                    {"name": "store_code", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "has_difference", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Bad Request"}
                }
            }
        }
    },
    "definitions": {
        "CreateTicketRequest": {
            "type": "object",
            "properties": {
                "store_code": {"type": "string"},
                "codes": {"type": "array", "items": {"type": "string"}},
                "priority": {"type": "string"},
                "description": {"type": "string"},
                "due_date": {"type": "string"}
            },
            "required": ["store_code", "codes"]
        },
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "notes": {"type": "string"},
                "comment": {"type": "string"}
            },
            "required": ["status"]
        },
        "AssignCodeRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "notes": {"type": "string"}
            },
            "required": ["user_id"]
        },
        "AddCommentRequest": {
            "type": "object",
            "properties": {
                "code_id": {"type": "integer"},
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "RegisterCountRequest": {
            "type": "object",
            "properties": {
                "quantity": {"type": "number"},
                "comment": {"type": "string"}
            },
            "required": ["quantity"]
        },
        "BatchRegisterRequest": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "count_id": {"type": "integer"},
                            "quantity": {"type": "number"},
                            "comment": {"type": "string"}
                        }
                    }
                }
            },
            "required": ["items"]
        },
        "CreateGrantRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "store_code": {"type": "string"},
                "type": {"type": "string"},
                "division_code": {"type": "string"},
                "division_name": {"type": "string"},
                "category_code": {"type": "string"},
                "category_name": {"type": "string"},
                "group_code": {"type": "string"},
                "group_name": {"type": "string"},
                "subgroup_code": {"type": "string"},
                "subgroup_name": {"type": "string"}
            },
            "required": ["user_id", "store_code", "type", "division_code"]
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
