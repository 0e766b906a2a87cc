package main

import (
	"context"

	"shelfwatch/cmd/shelfwatch/commands"
	"shelfwatch/lib/telemetry"
	"shelfwatch/lib/util/serviceutil"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "shelfwatch")
	commands.ExecuteContext(serviceutil.SignalContext())
}
