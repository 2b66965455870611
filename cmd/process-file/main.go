// Command process-file is the Lambda function that records metadata for newly created objects.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/app"
	"github.com/abduss/filemeta/internal/config"
	"github.com/abduss/filemeta/internal/functions"
	"github.com/abduss/filemeta/internal/logger"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	application, err := app.New(context.Background(), cfg, logg)
	if err != nil {
		logg.Fatal("wire backends", zap.Error(err))
	}
	defer application.Close()

	lambda.Start(functions.ProcessFile(application.Writer, logg.Named("process-file")))
}
