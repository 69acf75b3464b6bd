// Package docs registers the OpenAPI document served under /swagger/.
// Regenerate with: swag init -g cmd/showscheduler/main.go -o docs
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
		"/api/shows": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "List shows",
				"description": "Paginated shows, newest date first, each with its headliner.",
				"parameters": [
					{
						"type": "string",
						"description": "Show name filter",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number (default 1)",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size (default 20, max 100)",
						"name": "page_size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "data contains items and pagination",
						"schema": {
							"$ref": "#/definitions/controllers.ListShowsSuccessResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "Create a show",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Show data",
						"name": "ShowRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.ShowRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "data contains the created show",
						"schema": {
							"$ref": "#/definitions/controllers.ShowSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/shows/residency": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "Book a weekly residency",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Show data and number of weeks",
						"name": "ResidencyRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.ResidencyRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "data contains the created shows",
						"schema": {
							"$ref": "#/definitions/controllers.ResidencySuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/shows/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "Get a show by ID",
				"parameters": [
					{
						"type": "integer",
						"description": "Show ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "data contains the show",
						"schema": {
							"$ref": "#/definitions/controllers.ShowSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "Update a show",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Show ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Show data",
						"name": "ShowRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.ShowRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "data contains the updated show",
						"schema": {
							"$ref": "#/definitions/controllers.ShowSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"shows"
				],
				"summary": "Delete a show",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Show ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "data contains status",
						"schema": {
							"$ref": "#/definitions/controllers.DeleteSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/bands": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"bands"
				],
				"summary": "List bands",
				"parameters": [
					{
						"type": "string",
						"description": "Band name filter",
						"name": "search",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page number (default 1)",
						"name": "page",
						"in": "query"
					},
					{
						"type": "integer",
						"description": "Page size (default 20, max 100)",
						"name": "page_size",
						"in": "query"
					}
				],
				"responses": {
					"200": {
						"description": "data contains items and pagination",
						"schema": {
							"$ref": "#/definitions/controllers.ListBandsSuccessResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"bands"
				],
				"summary": "Book a band into a show",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Band data",
						"name": "BandRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.BandRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "data contains the created band",
						"schema": {
							"$ref": "#/definitions/controllers.BandSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/bands/{id}": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"bands"
				],
				"summary": "Get a band by ID",
				"parameters": [
					{
						"type": "integer",
						"description": "Band ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "data contains the band and its show",
						"schema": {
							"$ref": "#/definitions/controllers.BandSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"put": {
				"produces": [
					"application/json"
				],
				"tags": [
					"bands"
				],
				"summary": "Update a band",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Band ID",
						"name": "id",
						"in": "path",
						"required": true
					},
					{
						"description": "Band data",
						"name": "BandRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.BandRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "data contains the updated band",
						"schema": {
							"$ref": "#/definitions/controllers.BandSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			},
			"delete": {
				"produces": [
					"application/json"
				],
				"tags": [
					"bands"
				],
				"summary": "Delete a band",
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"type": "integer",
						"description": "Band ID",
						"name": "id",
						"in": "path",
						"required": true
					}
				],
				"responses": {
					"200": {
						"description": "data contains status",
						"schema": {
							"$ref": "#/definitions/controllers.DeleteSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"404": {
						"description": "error.code: not_found",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/weather": {
			"get": {
				"produces": [
					"application/json"
				],
				"tags": [
					"weather"
				],
				"summary": "Current weather",
				"responses": {
					"200": {
						"description": "data contains the reading",
						"schema": {
							"$ref": "#/definitions/controllers.WeatherSuccessResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/auth/login": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Log in as operator",
				"consumes": [
					"application/json"
				],
				"parameters": [
					{
						"description": "Email and password",
						"name": "LoginRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.LoginRequest"
						}
					}
				],
				"responses": {
					"200": {
						"description": "data contains token and user",
						"schema": {
							"$ref": "#/definitions/controllers.LoginSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		},
		"/api/auth/register": {
			"post": {
				"produces": [
					"application/json"
				],
				"tags": [
					"auth"
				],
				"summary": "Add an operator account",
				"consumes": [
					"application/json"
				],
				"security": [
					{
						"BearerAuth": []
					}
				],
				"parameters": [
					{
						"description": "Email and password",
						"name": "RegisterRequest",
						"in": "body",
						"required": true,
						"schema": {
							"$ref": "#/definitions/controllers.RegisterRequest"
						}
					}
				],
				"responses": {
					"201": {
						"description": "data contains the new operator",
						"schema": {
							"$ref": "#/definitions/controllers.UserSuccessResponse"
						}
					},
					"400": {
						"description": "error.code: bad_request",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"401": {
						"description": "error.code: unauthorized",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"409": {
						"description": "error.code: conflict",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					},
					"500": {
						"description": "error.code: internal_error",
						"schema": {
							"$ref": "#/definitions/helpers.APIResponse"
						}
					}
				}
			}
		}
	},
	"definitions": {
		"domain.Show": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"date": {
					"type": "string"
				},
				"show_name": {
					"type": "string"
				},
				"venue": {
					"type": "string"
				},
				"bands": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Band"
					}
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"domain.Band": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"show_id": {
					"type": "integer"
				},
				"band_name": {
					"type": "string"
				},
				"start_time": {
					"type": "string"
				},
				"end_time": {
					"type": "string"
				},
				"show": {
					"$ref": "#/definitions/domain.Show"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"domain.User": {
			"type": "object",
			"properties": {
				"id": {
					"type": "integer"
				},
				"email": {
					"type": "string"
				},
				"created_at": {
					"type": "string"
				},
				"updated_at": {
					"type": "string"
				}
			}
		},
		"domain.Weather": {
			"type": "object",
			"properties": {
				"city": {
					"type": "string"
				},
				"condition": {
					"type": "string"
				},
				"temp": {
					"type": "integer"
				},
				"wind": {
					"type": "integer"
				},
				"fetched_at": {
					"type": "string"
				}
			}
		},
		"helpers.APIError": {
			"type": "object",
			"properties": {
				"code": {
					"type": "string"
				},
				"message": {
					"type": "string"
				}
			}
		},
		"helpers.APIResponse": {
			"type": "object",
			"properties": {
				"data": {},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"helpers.PaginationMeta": {
			"type": "object",
			"properties": {
				"page": {
					"type": "integer"
				},
				"page_size": {
					"type": "integer"
				},
				"total": {
					"type": "integer"
				},
				"total_pages": {
					"type": "integer"
				}
			}
		},
		"controllers.ShowRequest": {
			"type": "object",
			"properties": {
				"date": {
					"type": "string",
					"example": "2024-10-24"
				},
				"show_name": {
					"type": "string",
					"example": "Lateralus Tour"
				},
				"venue": {
					"type": "string",
					"example": "Reunion Arena"
				}
			}
		},
		"controllers.ResidencyRequest": {
			"type": "object",
			"properties": {
				"date": {
					"type": "string",
					"example": "2024-10-24"
				},
				"show_name": {
					"type": "string",
					"example": "Lateralus Tour"
				},
				"venue": {
					"type": "string",
					"example": "Reunion Arena"
				},
				"weeks": {
					"type": "integer",
					"example": 4
				}
			}
		},
		"controllers.BandRequest": {
			"type": "object",
			"properties": {
				"show_id": {
					"type": "integer",
					"example": 1
				},
				"band_name": {
					"type": "string",
					"example": "Tool"
				},
				"start_time": {
					"type": "string",
					"example": "22:00"
				},
				"end_time": {
					"type": "string",
					"example": "23:30"
				}
			}
		},
		"controllers.LoginRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "operator@example.com"
				},
				"password": {
					"type": "string",
					"example": "secret123"
				}
			}
		},
		"controllers.RegisterRequest": {
			"type": "object",
			"properties": {
				"email": {
					"type": "string",
					"example": "stage-manager@example.com"
				},
				"password": {
					"type": "string",
					"example": "secret123"
				}
			}
		},
		"controllers.LoginResponse": {
			"type": "object",
			"properties": {
				"token": {
					"type": "string"
				},
				"token_type": {
					"type": "string"
				},
				"user": {
					"$ref": "#/definitions/domain.User"
				}
			}
		},
		"controllers.DeleteResponse": {
			"type": "object",
			"properties": {
				"status": {
					"type": "string"
				}
			}
		},
		"controllers.ListShowsResponse": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Show"
					}
				},
				"pagination": {
					"$ref": "#/definitions/helpers.PaginationMeta"
				}
			}
		},
		"controllers.ListBandsResponse": {
			"type": "object",
			"properties": {
				"items": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Band"
					}
				},
				"pagination": {
					"$ref": "#/definitions/helpers.PaginationMeta"
				}
			}
		},
		"controllers.ListShowsSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/controllers.ListShowsResponse"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.ListBandsSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/controllers.ListBandsResponse"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.ShowSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/domain.Show"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.BandSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/domain.Band"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.ResidencySuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"type": "array",
					"items": {
						"$ref": "#/definitions/domain.Show"
					}
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.DeleteSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/controllers.DeleteResponse"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.WeatherSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/domain.Weather"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.LoginSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/controllers.LoginResponse"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		},
		"controllers.UserSuccessResponse": {
			"type": "object",
			"properties": {
				"data": {
					"$ref": "#/definitions/domain.User"
				},
				"error": {
					"$ref": "#/definitions/helpers.APIError"
				}
			}
		}
	},
	"securityDefinitions": {
		"BearerAuth": {
			"description": "Type \"Bearer\" followed by a space and the JWT.",
			"type": "apiKey",
			"name": "Authorization",
			"in": "header"
		}
	}
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Show Scheduler API",
	Description:      "Shows, bands and the weather widget for the venue schedule. Writes require an operator token.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
