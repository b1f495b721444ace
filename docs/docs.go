// Package docs holds the generated OpenAPI document for the Radar API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "description": "REST API for the Radar service-detection scanner.",
    "title": "Radar API",
    "license": {
      "name": "MIT",
      "url": "https://opensource.org/licenses/MIT"
    },
    "version": "1.0"
  },
  "host": "localhost:8080",
  "basePath": "/",
  "schemes": [
    "http"
  ],
  "securityDefinitions": {
    "ApiKeyAuth": {
      "type": "apiKey",
      "name": "Authorization",
      "in": "header"
    }
  },
  "paths": {
    "/scans": {
      "post": {
        "consumes": [
          "application/json"
        ],
        "produces": [
          "application/json"
        ],
        "summary": "Create a new detection task",
        "description": "Accepts a batch of targets, queues them for the probe catalog, and returns a task id.",
        "operationId": "createScan",
        "tags": [
          "Scans"
        ],
        "security": [
          {
            "ApiKeyAuth": []
          }
        ],
        "parameters": [
          {
            "description": "Targets and transport",
            "name": "scanRequest",
            "in": "body",
            "required": true,
            "schema": {
              "$ref": "#/definitions/CreateScanRequest"
            }
          }
        ],
        "responses": {
          "202": {
            "description": "Accepted",
            "schema": {
              "type": "object"
            }
          },
          "400": {
            "description": "Bad Request",
            "schema": {
              "type": "object"
            }
          },
          "500": {
            "description": "Internal Server Error",
            "schema": {
              "type": "object"
            }
          }
        }
      }
    },
    "/scans/{id}": {
      "get": {
        "produces": [
          "application/json"
        ],
        "summary": "Get detection task status and results",
        "description": "Poll a task by id until its status reaches completed or failed.",
        "operationId": "getScan",
        "tags": [
          "Scans"
        ],
        "security": [
          {
            "ApiKeyAuth": []
          }
        ],
        "parameters": [
          {
            "type": "string",
            "description": "Task ID",
            "name": "id",
            "in": "path",
            "required": true
          }
        ],
        "responses": {
          "200": {
            "description": "OK",
            "schema": {
              "$ref": "#/definitions/ScanTask"
            }
          },
          "404": {
            "description": "Not Found",
            "schema": {
              "type": "object"
            }
          },
          "500": {
            "description": "Internal Server Error",
            "schema": {
              "type": "object"
            }
          }
        }
      }
    }
  },
  "definitions": {
    "CreateScanRequest": {
      "type": "object",
      "properties": {
        "targets": {
          "type": "array",
          "items": {
            "$ref": "#/definitions/Target"
          }
        },
        "transport": {
          "type": "string",
          "example": "tcp"
        }
      }
    },
    "Target": {
      "type": "object",
      "properties": {
        "ip": {
          "type": "string",
          "example": "192.0.2.10"
        },
        "domain": {
          "type": "string",
          "example": "scanme.example.com"
        },
        "port": {
          "type": "integer",
          "example": 443
        }
      }
    },
    "ScanTask": {
      "type": "object",
      "properties": {
        "id": {
          "type": "string",
          "example": "a3f5c62e-1234-4f72-a84a-1c2d3e4f5678"
        },
        "status": {
          "type": "string",
          "example": "pending"
        },
        "targets": {
          "type": "array",
          "items": {
            "$ref": "#/definitions/Target"
          }
        },
        "transport": {
          "type": "string",
          "example": "tcp"
        },
        "results": {
          "type": "array",
          "items": {
            "type": "object"
          }
        },
        "created_at": {
          "type": "string",
          "format": "date-time",
          "example": "2026-01-02T15:04:05Z"
        },
        "completed_at": {
          "type": "string",
          "format": "date-time",
          "example": "2026-01-02T15:04:05Z"
        },
        "error": {
          "type": "string",
          "example": "failed to queue task"
        }
      },
      "additionalProperties": false
    }
  }
}
`

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

type swaggerDoc struct{}

func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}
