package docs

import "github.com/swaggo/swag"

// @title           TodoTrack API
// @version         1.0
// @description     Personal task tracking API with tags, analytics and activity logging

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Auth
// @tag.description Registration, login and profile operations

// @tag.name Todos
// @tag.description Todo management operations

// @tag.name Tags
// @tag.description Tag management operations

// @tag.name TodoTags
// @tag.description Todo-tag association operations

// @tag.name Analytics
// @tag.description Productivity metrics and trends

// @tag.name Logs
// @tag.description Activity log operations

// @tag.name UserData
// @tag.description Backup export and import

// Register swagger info
func SwaggerInfo() *swag.Spec {
	spec, _ := swag.GetSwagger(swag.Name).(*swag.Spec)
	return spec
}
