package main

import (
	"github.com/adanyl0v/tracklin/internal/app"
	"github.com/adanyl0v/tracklin/internal/config"
)

func main() {
	app.InitDefaultLogger()
	app.MustReadEnv()
	app.MustInitApplicationLogger()

	if config.Global().StorageDriver == config.StorageDriverPostgres {
		app.MustConnectPostgres()
		defer app.DisconnectPostgres()
	}

	app.ConnectRedis()
	defer app.DisconnectRedis()

	app.MustListenAndServeHTTP()
}
