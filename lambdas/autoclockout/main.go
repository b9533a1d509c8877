package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"crewtime.app/crewtime/core"
	"crewtime.app/crewtime/infrastructure/communication"
	"crewtime.app/crewtime/infrastructure/devops"
	otcore "crewtime.app/crewtime/overtime/core"
	"crewtime.app/crewtime/overtime/notify"
	"github.com/aws/aws-lambda-go/lambda"
)

// SweepEvent is the EventBridge payload. The schedule fires it every
// five minutes per environment.
type SweepEvent struct {
	Env string `json:"env"`
}

func RunSweep(ctx context.Context, dsn string) (otcore.SweepStats, error) {
	dm, err := core.New(dsn, 10)
	if err != nil {
		return otcore.SweepStats{}, fmt.Errorf("failed to create database manager: %w", err)
	}
	dm.LogLevel = core.LogLevelError
	defer dm.Close()

	db, err := dm.GetDB(ctx)
	if err != nil {
		return otcore.SweepStats{}, fmt.Errorf("failed to get database: %w", err)
	}

	email, err := notify.ConnectSES(ctx)
	if err != nil {
		fmt.Printf("[WARN] email push disabled: %v\n", err)
	}

	stats, err := otcore.RunAutoClockOutSweep(ctx, db, otcore.SweepDeps{
		Notifier: notify.NewStoreNotifier(dm, email),
	})
	if err != nil {
		slack := communication.ConnectSlack()
		slack.Errorf("auto clock-out sweep failed: %v", err)
		return stats, err
	}
	return stats, nil
}

func HandleRequest(ctx context.Context, event SweepEvent) (otcore.SweepStats, error) {
	eventJson, _ := json.Marshal(event)
	fmt.Printf("[INFO] Event: %s\n", string(eventJson))

	env := strings.ToLower(event.Env)
	if env == "" {
		return otcore.SweepStats{}, fmt.Errorf("environment (env) is required")
	}

	fmt.Printf("[INFO] Loading database configuration from SSM parameter store 'databases'\n")
	dbs, err := devops.LoadDBConfig(ctx)
	if err != nil {
		return otcore.SweepStats{}, fmt.Errorf("failed to load databases from SSM: %w", err)
	}

	entry, ok := dbs[env]
	if !ok {
		return otcore.SweepStats{}, fmt.Errorf("environment '%s' not found in parameter store", env)
	}

	return RunSweep(ctx, entry.GetDSN())
}

func main() {
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(HandleRequest)
	} else {
		dsn := os.Getenv("DSN")
		if dsn == "" {
			fmt.Printf("[ERROR] DSN is required in local mode\n")
			os.Exit(1)
		}

		stats, err := RunSweep(context.Background(), dsn)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			os.Exit(1)
		}

		statsJson, _ := json.Marshal(stats)
		fmt.Printf("[INFO] Sweep complete: %s\n", string(statsJson))
	}
}
