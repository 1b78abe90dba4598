package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/funding-ledger/pkg/config"
	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/locker"
	"github.com/chris/funding-ledger/pkg/policy"
	dydbstore "github.com/chris/funding-ledger/pkg/storage/dynamodb"
	goredislib "github.com/redis/go-redis/v9"
)

var reconciler *Reconciler

func init() {
	// Load .env (useful for local testing) and the environment.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}
	if cfg.Tables.Accounts == "" || cfg.Tables.Transactions == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}
	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables(cfg.Tables))

	// The audit must serialize with API instances, so it shares their Redis locks.
	var lk locker.Locker = locker.NewLocal(cfg.LockTimeout)
	if cfg.LockBackend == config.LockRedis {
		opts := locker.DefaultRedisOptions()
		opts.Timeout = cfg.LockTimeout
		lk = locker.NewRedis(goredislib.NewClient(&goredislib.Options{Addr: cfg.RedisAddr}), opts)
	}

	pol, err := policy.New(cfg.Policy)
	if err != nil {
		log.Fatalf("invalid policy: %v", err)
	}

	// Audits never notify.
	coord := coordinator.New(store, pol, lk, nil)
	reconciler = NewReconciler(store, coord)
}

func main() {
	lambda.Start(reconciler.HandleRequest)
}
