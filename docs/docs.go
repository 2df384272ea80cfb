// Package docs registers the OpenAPI document served under /swagger/.
// The document is maintained alongside the swag annotations on the handlers;
// docs_test.go checks that it stays in step with the router.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Returns the authenticated caller with roles and effective permissions",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Get current caller",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.AuthUserDTO"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/data/backups": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Backups"],
                "summary": "List backups",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.BackupDTO"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Exports all data and stores it in the configured object storage",
                "produces": ["application/json"],
                "tags": ["Backups"],
                "summary": "Write a backup",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.BackupDTO"}}
                }
            }
        },
        "/data/backups/restore": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Imports a stored backup, replacing all data. Requires the admin role.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Backups"],
                "summary": "Restore a backup",
                "parameters": [
                    {"description": "Backup path", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.RestoreBackupRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ImportResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "403": {"description": "Forbidden"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/domain.ImportResult"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/domain.ImportResult"}}
                }
            }
        },
        "/data/export": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Returns every managed table, soft-deleted tasks and resources included, as a snapshot that can be imported again",
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Export all data as a snapshot",
                "parameters": [
                    {"type": "boolean", "description": "Indent the document", "name": "pretty", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Snapshot"}}
                }
            }
        },
        "/data/import": {
            "post": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Deletes every managed table and loads the snapshot in one transaction. Either everything is replaced or nothing changes.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Replace all data with a snapshot",
                "parameters": [
                    {"type": "string", "description": "Label recorded on the import run", "name": "source", "in": "query"},
                    {"description": "Snapshot document", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.Snapshot"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ImportResult"}},
                    "400": {"description": "Body is not a snapshot", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "409": {"description": "Another import is running", "schema": {"$ref": "#/definitions/domain.ImportResult"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "422": {"description": "Import rolled back", "schema": {"$ref": "#/definitions/domain.ImportResult"}}
                }
            }
        },
        "/data/import/runs": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Returns import runs newest first",
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "List import runs",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Items per page (max 200)", "name": "pageSize", "in": "query"},
                    {"enum": ["running", "committed", "rolled_back"], "type": "string", "description": "Filter by status", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "allOf": [
                                {"$ref": "#/definitions/domain.PaginatedResponse"},
                                {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/domain.ImportRunDTO"}}}}
                            ]
                        }
                    },
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/data/import/runs/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Get import run",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Run ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.ImportRunDTO"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/domain.APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/domain.APIError"}}
                }
            }
        },
        "/data/summary": {
            "get": {
                "security": [{"BearerAuth": []}, {"ApiKeyAuth": []}],
                "description": "Row counts per entity and money totals, used to verify imports",
                "produces": ["application/json"],
                "tags": ["Data"],
                "summary": "Summarize stored data",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.SummaryDTO"}}
                }
            }
        }
    },
    "definitions": {
        "domain.APIError": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "status": {"type": "integer"},
                "title": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "domain.AuthUserDTO": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "method": {"type": "string"},
                "name": {"type": "string"},
                "permissions": {"type": "array", "items": {"type": "string"}},
                "roles": {"type": "array", "items": {"type": "string"}},
                "subject": {"type": "string"}
            }
        },
        "domain.BackupDTO": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "path": {"type": "string"},
                "records": {"type": "integer"},
                "size": {"type": "integer"}
            }
        },
        "domain.EntityCount": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "entity": {"type": "string"}
            }
        },
        "domain.ImportResult": {
            "type": "object",
            "properties": {
                "counts": {"type": "array", "items": {"$ref": "#/definitions/domain.EntityCount"}},
                "duration": {"type": "string"},
                "error": {"type": "string"},
                "runId": {"type": "string"},
                "success": {"type": "boolean"},
                "warnings": {"type": "array", "items": {"type": "string"}}
            }
        },
        "domain.ImportRunDTO": {
            "type": "object",
            "properties": {
                "counts": {"type": "array", "items": {"$ref": "#/definitions/domain.EntityCount"}},
                "error": {"type": "string"},
                "finishedAt": {"type": "string"},
                "id": {"type": "string"},
                "source": {"type": "string"},
                "startedAt": {"type": "string"},
                "status": {"type": "string", "enum": ["running", "committed", "rolled_back"]},
                "triggeredBy": {"type": "string"},
                "warningCount": {"type": "integer"}
            }
        },
        "domain.PaginatedResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "total": {"type": "integer"},
                "totalPages": {"type": "integer"}
            }
        },
        "domain.RestoreBackupRequest": {
            "type": "object",
            "required": ["path"],
            "properties": {
                "path": {"type": "string", "maxLength": 500}
            }
        },
        "domain.Snapshot": {
            "type": "object",
            "properties": {
                "meta": {"type": "object"},
                "clientCategories": {"type": "array", "items": {"type": "object"}},
                "supplierCategories": {"type": "array", "items": {"type": "object"}},
                "orderTemplates": {"type": "array", "items": {"type": "object"}},
                "notifications": {"type": "array", "items": {"type": "object"}},
                "employees": {"type": "array", "items": {"type": "object"}},
                "tools": {"type": "array", "items": {"type": "object"}},
                "warehouseItems": {"type": "array", "items": {"type": "object"}},
                "warehouseHistory": {"type": "array", "items": {"type": "object"}},
                "clients": {"type": "array", "items": {"type": "object"}},
                "suppliers": {"type": "array", "items": {"type": "object"}},
                "projects": {"type": "array", "items": {"type": "object"}},
                "tasks": {"type": "array", "items": {"type": "object"}},
                "resources": {"type": "array", "items": {"type": "object"}},
                "quotationItems": {"type": "array", "items": {"type": "object"}},
                "costEstimateItems": {"type": "array", "items": {"type": "object"}},
                "orders": {"type": "array", "items": {"type": "object"}},
                "expenses": {"type": "array", "items": {"type": "object"}}
            }
        },
        "domain.SummaryDTO": {
            "type": "object",
            "properties": {
                "counts": {"type": "array", "items": {"$ref": "#/definitions/domain.EntityCount"}},
                "expenseTotal": {"type": "number"},
                "generatedAt": {"type": "string"},
                "lastImport": {"$ref": "#/definitions/domain.ImportRunDTO"},
                "orderTotalAmount": {"type": "number"},
                "projectTotalValue": {"type": "number"},
                "softDeletedTasks": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "x-api-key",
            "in": "header"
        },
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Sitebook Data API",
	Description:      "Bulk import, export and backup of Sitebook construction data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
