package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"

	"studio-booking/internal/middleware"

	"github.com/gin-gonic/gin"
)

const testAdminToken = "test-admin-token"

var (
	InvalidJSON = `{"invalid": json}`
)

type routeRegistrar interface {
	RegisterRoutes(r *gin.Engine)
	RegisterAdminRoutes(router *gin.RouterGroup)
}

// 公開與管理路由都掛上，管理路由需 X-Admin-Token
func setupTestRouter(h routeRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	h.RegisterRoutes(router)
	admin := router.Group("/api/v1/admin", middleware.AdminAuth(testAdminToken))
	h.RegisterAdminRoutes(admin)

	return router
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// admin variant carrying the token header
func createAdminJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req := createJSONHTTPRequest(method, url, data)
	req.Header.Set(middleware.AdminTokenHeader, testAdminToken)
	return req
}

func createAdminHTTPRequest(method, url string) *http.Request {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set(middleware.AdminTokenHeader, testAdminToken)
	return req
}
