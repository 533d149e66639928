package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/gmgenove/attendance-checker/config"
	"github.com/gmgenove/attendance-checker/database"
	"github.com/gmgenove/attendance-checker/routes"
	"github.com/gmgenove/attendance-checker/sweep"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	database.Connect(cfg)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, cfg)

	// Reconciliation sweep runs on its own timer, independent of any
	// request; it shares the exact same write rules as the handlers.
	sw := sweep.New(database.DB, cfg.Location())
	cronRunner := sw.Start()
	defer cronRunner.Stop()

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
