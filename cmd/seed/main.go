package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sahilchouksey/admission-bridge/config"
	"github.com/sahilchouksey/admission-bridge/database"
	"github.com/sahilchouksey/admission-bridge/utils"
	"gorm.io/gorm"
)

func main() {
	samples := flag.Bool("samples", false, "also create demo colleges, profiles and students")
	samplePassword := flag.String("sample-password", "", "password shared by the demo accounts")
	flag.Parse()

	if err := config.LoadENV(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}

	getEnv, err := config.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := utils.NewLogger(getEnv.GO_ENV)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database connection using GORM
	store, err := database.StartGORM()
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer store.Close()
	log.Info("database connected", "driver", store.Dialect())

	if err := store.Init(); err != nil {
		log.Fatal("failed to run migrations", "error", err)
	}

	gormDB := store.GetDB().(*gorm.DB)

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Admission Bridge - Database Seeding")
	fmt.Println(separator)

	err = database.RunSeeds(gormDB, database.SeedOptions{
		AdminEmail:     getEnv.ADMIN_EMAIL,
		AdminPassword:  getEnv.ADMIN_PASSWORD,
		AdminName:      getEnv.ADMIN_NAME,
		Samples:        *samples,
		SamplePassword: *samplePassword,
	}, log)
	if err != nil {
		log.Fatal("seeding failed", "error", err)
	}

	fmt.Println(separator)
	fmt.Println("Seeding completed successfully")
	fmt.Println("Admin user is created from ADMIN_EMAIL and ADMIN_PASSWORD; if unset it is skipped.")
	fmt.Println(separator)
}
