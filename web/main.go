package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"

	"crewtime.app/crewtime/core"
	otcore "crewtime.app/crewtime/overtime/core"
	"crewtime.app/crewtime/overtime/notify"
	"crewtime.app/crewtime/overtime/web/handlers"
	"crewtime.app/crewtime/web/middlewares"
	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()

	dsn := os.Getenv("DSN")
	fmt.Printf("using DSN: %s\n", dsn)

	dm, err := core.New(dsn, 10)
	if err != nil {
		log.Fatal(err)
	}
	defer dm.Close()

	base64Secret := os.Getenv("CREWTIME_SIGNING_SECRET")
	jwtSecret, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		log.Fatal("Failed to decode JWT secret:", err)
	}

	email, err := notify.ConnectSES(context.Background())
	if err != nil {
		log.Printf("[WARN] email push disabled: %v", err)
	}

	notifier := notify.NewStoreNotifier(dm, email)
	workflow := otcore.NewWorkflow(otcore.NewRoleAuthorizer(), notifier, otcore.SystemClock())
	tracker := otcore.NewSessionTracker(notifier, otcore.SystemClock())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	protected := r.Group("/api/overtime/v1.0")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		handlers.Register(protected, dm, workflow, tracker)
	}

	addr := os.Getenv("CREWTIME_LISTEN_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8090"
	}
	r.Run(addr)
}
