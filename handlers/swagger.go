package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>assinei — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document covering the signing workflow surface.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "assinei-backend", "version": "v0.1.0" },
  "paths": {
    "/auth/login": {
      "post": { "summary": "Password login", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "access and refresh tokens" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Rotate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new token pair" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "responses": { "200": { "description": "logged out" } } }
    },
    "/api/documents": {
      "get": { "summary": "List documents visible to the caller", "responses": { "200": { "description": "documents" } } },
      "post": { "summary": "Create a document with its signatory tiers", "responses": { "201": { "description": "created" } } }
    },
    "/api/documents/{id}": {
      "get": { "summary": "Fetch one document", "responses": { "200": { "description": "document" }, "403": { "description": "not allowed" }, "404": { "description": "unknown" } } },
      "patch": { "summary": "Edit title/description or cancel via status", "responses": { "200": { "description": "updated" }, "409": { "description": "state does not allow it" } } },
      "delete": { "summary": "Delete the document and its stored file", "responses": { "204": { "description": "deleted" } } }
    },
    "/api/documents/{id}/sign": {
      "post": { "summary": "Sign as a current-tier signatory", "responses": { "201": { "description": "signature recorded" }, "403": { "description": "not this user's turn" }, "409": { "description": "document not in signing state" } } }
    },
    "/api/documents/{id}/reject": {
      "post": { "summary": "Reject with a mandatory reason", "responses": { "204": { "description": "rejected" } } }
    },
    "/api/documents/{id}/cancel": {
      "post": { "summary": "Cancel an in-flight document (owner or admin)", "responses": { "204": { "description": "cancelled" } } }
    },
    "/api/documents/{id}/download": {
      "get": { "summary": "Presigned download link for the stored file", "responses": { "200": { "description": "url" } } }
    },
    "/api/documents/{id}/signatures": {
      "get": { "summary": "List recorded signatures", "responses": { "200": { "description": "signatures" } } }
    },
    "/api/notifications/stream": {
      "get": { "summary": "Server-sent events stream of workflow notifications", "responses": { "200": { "description": "event stream" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
