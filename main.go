package main

import (
	"context"
	"time"

	"tinygo.org/x/bluetooth"

	"nanosense-go/bus"
	"nanosense-go/errcode"
	"nanosense-go/services/acquire"
	"nanosense-go/services/ble"
	"nanosense-go/services/config"
	"nanosense-go/services/console"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	ctx := context.Background()
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		println("[main] config:", err.Error())
		park(errcode.InvalidConfig)
	}

	b := bus.NewBus(8)
	console.New(nil, 30*time.Second).Start(ctx, b.NewConnection("console"))
	config.Publish(b.NewConnection("config"), cfg)

	opts := acquire.BoardOptions(cfg)
	opts.Transport = ble.New(bluetooth.DefaultAdapter, cfg.LocalName)
	opts.Conn = b.NewConnection("acquire")

	err := acquire.New(opts).Run(ctx)
	// Let the console drain the halt report.
	time.Sleep(100 * time.Millisecond)
	park(errcode.Of(err))
}

// park never returns; the node is fail-stop.
func park(c errcode.Code) {
	for {
		println("[halt]", string(c))
		time.Sleep(5 * time.Second)
	}
}
