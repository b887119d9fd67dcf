package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A missing .env is fine; the environment may be set another way.
	_ = godotenv.Load()

	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "termgraph",
		Usage: "Extract a terminology and its variation graph from a corpus",
		Commands: []*cli.Command{
			extractCommand(),
			alignCommand(),
			tokensCommand(),
			fetchDictCommand(),
		},
	}

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := root.Run(ctx, args); err != nil {
		log.Fatal(err)
	}
}
