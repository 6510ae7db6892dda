package main

import (
	"compress-bot/app"
	"compress-bot/pkg/observability"
)

func main() {
	observability.StartProfiling("compress-bot")
	app.Run()
}
