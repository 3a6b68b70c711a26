package main

import (
	stdLog "log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/campuslib/library-service/app"
	"github.com/campuslib/library-service/config"
)

//	@title			University Library Circulation API
//	@version		1.0
//	@description	Catalog browsing, borrowing approval workflow and reservations.
//	@BasePath		/

func main() {
	if err := godotenv.Load(); err != nil {
		stdLog.Println("load envs from .env: ", err)
	}
	cfg := config.NewConfig(
		config.WithLogLevel(zapcore.DebugLevel),
		config.WithWriteTimeout(time.Minute),
	)

	app.Run(cfg)
}
