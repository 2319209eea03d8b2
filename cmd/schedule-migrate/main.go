package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"ms-schedule/internal/config"
	"ms-schedule/internal/database/migrations"
	"ms-schedule/internal/logger"
)

func main() {
	flag.Usage = func() {
		fmt.Println("usage: schedule-migrate [up|down|version|to <n>]")
	}
	flag.Parse()
	os.Exit(run(flag.Arg(0), flag.Arg(1)))
}

func run(cmd, arg string) int {
	log := logger.NewLogger()
	defer log.Close()

	_ = godotenv.Load()
	cfg := config.Load()

	runner := migrations.NewRunner(cfg.Database.DSN, cfg.Migrations, log)
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("MIGRATE", err.Error())
		}
	}()

	var err error
	switch cmd {
	case "", "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "version":
		var v uint
		if v, err = runner.Version(); err == nil {
			log.Info("MIGRATE", fmt.Sprintf("Current schema version: %d", v))
		}
	case "to":
		var n uint64
		if n, err = strconv.ParseUint(arg, 10, 32); err == nil {
			err = runner.MigrateTo(uint(n))
		}
	default:
		flag.Usage()
		return 2
	}
	if err != nil {
		log.Error("MIGRATE", err.Error())
		return 1
	}
	return 0
}
