package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sah-lishi/backend-journey/internal/app"
)

func main() {
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", app.AppName, err)
		os.Exit(1)
	}
}
