package main

import (
	"github.com/doculens/backend/internal/server"
	"github.com/doculens/backend/internal/util"
	"github.com/doculens/backend/pkg/logger"
	"github.com/doculens/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.New(console.Params{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
