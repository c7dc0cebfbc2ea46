package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nimasrn/webhook-gateway/internal/config"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/pg"
)

// One-shot reconciliation: scans stored delivery events whose vendor
// reference column is empty and fills it from the raw payload.
func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	db, err := pg.CreateReadWrite(readConf, writeConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	eventRepo := repository.NewMessageEventRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	channelRepo := repository.NewChannelRepository(db)

	job := pipeline.NewBackfill(eventRepo, vendorRepo, channelRepo, config.Get().BackfillBatchSize)

	report, err := job.Run(context.Background())
	if err != nil {
		logger.Error("backfill failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("already_populated: %d\n", report.AlreadyPopulated)
	fmt.Printf("eligible:          %d\n", report.Eligible)
	fmt.Printf("processed:         %d\n", report.Processed)
	fmt.Printf("updated:           %d\n", report.Updated)
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
