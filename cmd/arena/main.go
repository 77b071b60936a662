package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := NewApp(parseArgs()).Run(ctx)
	if err != nil {
		logrus.Fatal(err)
	}
}
