package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/imrishuroy/go-idempotent-payments/docs"
	"github.com/imrishuroy/go-idempotent-payments/internal/app"
	"github.com/imrishuroy/go-idempotent-payments/internal/config"
	"github.com/imrishuroy/go-idempotent-payments/internal/handlers"
)

// @title           Payment Gateway API
// @version         1.0
// @description     Idempotent card payment gateway: authorize once per idempotency key, read back redacted payments.

// @host      localhost:8080
// @BasePath  /

func setupRouter(svc handlers.PaymentService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterPaymentRoutes(r, svc)

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to init payment service: %v", err)
	}
	defer a.Close()

	r := setupRouter(a.Service)

	// if RUN_LOCAL is true, run local HTTP server for development.
	if cfg.RunLocal {
		log.Printf("running local server on %s", cfg.HTTPAddr)
		if err := r.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
