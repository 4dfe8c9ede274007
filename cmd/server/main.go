package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"socialgraph/internal/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := http.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
