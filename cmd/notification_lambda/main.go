package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/funding-ledger/pkg/config"
	dydbstore "github.com/chris/funding-ledger/pkg/storage/dynamodb"
)

var consumer *Consumer

func init() {
	// Load .env (useful for local testing) and the environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize dependencies once.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	if cfg.Tables.Notifications == "" {
		log.Fatal("DYNAMODB_NOTIFICATIONS_TABLE_NAME environment variable not set")
	}
	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))
	consumer = NewConsumer(store)
}

func main() {
	lambda.Start(consumer.HandleRequest)
}
