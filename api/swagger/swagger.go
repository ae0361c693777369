package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MathOps Records API",
        "description": "Administrative access to pacing, milestones, deadlines and batch reports",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Terms",
            "description": "Term calendar"
        },
        {
            "name": "Milestones",
            "description": "Milestone schedules and deadlines"
        },
        {
            "name": "Pace",
            "description": "Pace and track classification"
        },
        {
            "name": "Deadlines",
            "description": "Milestone completion status"
        },
        {
            "name": "Registrations",
            "description": "Course registrations"
        },
        {
            "name": "Reports",
            "description": "Asynchronous batch reports"
        },
        {
            "name": "Observability",
            "description": "Counters"
        }
    ],
    "paths": {
        "/terms": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "List terms",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/terms/active": {
            "get": {
                "tags": [
                    "Terms"
                ],
                "summary": "Get active term",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/milestones": {
            "get": {
                "tags": [
                    "Milestones"
                ],
                "summary": "Milestone schedule of one pace and track",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    },
                    {
                        "name": "pace",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "track",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/milestones/validate": {
            "get": {
                "tags": [
                    "Milestones"
                ],
                "summary": "Validate every milestone schedule of a term",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/milestones/cache": {
            "delete": {
                "tags": [
                    "Milestones"
                ],
                "summary": "Drop cached milestone schedules of a term",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/students/{id}/milestones/{number}/{type}": {
            "get": {
                "tags": [
                    "Milestones"
                ],
                "summary": "Effective deadline of one milestone for a student",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "number",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "type",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    },
                    {
                        "name": "pace",
                        "in": "query",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "track",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/students/{id}/pace": {
            "get": {
                "tags": [
                    "Pace"
                ],
                "summary": "Pace and track of one student",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/students/{id}/deadlines": {
            "get": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Milestone completion status of one student",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/students/{id}/registrations": {
            "get": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Registrations of one student",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/pace/summary": {
            "get": {
                "tags": [
                    "Pace"
                ],
                "summary": "Student counts per pace and track",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/pace/repair": {
            "post": {
                "tags": [
                    "Pace"
                ],
                "summary": "Rewrite missing or inconsistent pace orders",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    },
                    {
                        "name": "dryRun",
                        "in": "query",
                        "type": "boolean",
                        "required": false,
                        "description": "List changes without writing them (default true)"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/deadlines": {
            "get": {
                "tags": [
                    "Deadlines"
                ],
                "summary": "Milestone completion status of every student",
                "parameters": [
                    {
                        "name": "term",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Term key such as FA24; the active term when blank"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/registrations/{term}/{id}/{course}/{sect}/open-status": {
            "patch": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Set the open status of a registration",
                "parameters": [
                    {
                        "name": "term",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "course",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "sect",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateOpenStatusRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/registrations/{term}/{id}/{course}/{sect}/grading-option": {
            "patch": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Set the grading option of a registration",
                "parameters": [
                    {
                        "name": "term",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "course",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "sect",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateGradingOptionRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/registrations/{term}/{id}/{course}/{sect}/pace-order": {
            "patch": {
                "tags": [
                    "Registrations"
                ],
                "summary": "Set or clear the pace order of a registration",
                "parameters": [
                    {
                        "name": "term",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "course",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "sect",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdatePaceOrderRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/reports": {
            "post": {
                "tags": [
                    "Reports"
                ],
                "summary": "Queue a batch report",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ReportRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/reports/jobs/{id}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Status of a report job",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": [
                    "Reports"
                ],
                "summary": "Download a finished report with a signed token",
                "parameters": [
                    {
                        "name": "token",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "produces": [
                    "text/plain",
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "Report file"
                    },
                    "403": {
                        "description": "Invalid or expired token"
                    }
                }
            }
        },
        "/metrics/summary": {
            "get": {
                "tags": [
                    "Observability"
                ],
                "summary": "Cache and report counters",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized"
                    }
                }
            }
        }
    },
    "definitions": {
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
            }
        },
        "UpdateOpenStatusRequest": {
            "type": "object",
            "properties": {
                "open_status": {
                    "type": "string",
                    "enum": [
                        "",
                        "Y",
                        "N",
                        "D",
                        "G"
                    ]
                }
            }
        },
        "UpdateGradingOptionRequest": {
            "type": "object",
            "required": [
                "grading_option"
            ],
            "properties": {
                "grading_option": {
                    "type": "string"
                }
            }
        },
        "UpdatePaceOrderRequest": {
            "type": "object",
            "properties": {
                "pace_order": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 5,
                    "x-nullable": true
                }
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": [
                "kind"
            ],
            "properties": {
                "kind": {
                    "type": "string",
                    "enum": [
                        "milestone-check",
                        "pace-summary",
                        "deadline-status",
                        "pace-order-repair"
                    ]
                },
                "term": {
                    "type": "string"
                },
                "format": {
                    "type": "string",
                    "enum": [
                        "text",
                        "csv",
                        "pdf"
                    ]
                }
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
