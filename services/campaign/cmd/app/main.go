package main

import (
	"brandcast/pkg/config"
	app "brandcast/services/campaign/internal/app"

	_ "brandcast/services/campaign/docs" // Swagger docs
)

// @title           Campaign Service API
// @version         1.0
// @description     Renders branded images and publishes them to Instagram and Facebook

// @host      localhost:5000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		panic(err)
	}

	if err := application.Run(); err != nil {
		panic(err)
	}

	application.Wait()

	if err := application.Shutdown(); err != nil {
		panic(err)
	}
}
