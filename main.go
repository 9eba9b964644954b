package main

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/admission-bridge/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
