// ratelookup runs one free-text query against the rate store and prints
// the resolved price. A debugging aid for checking what a query line
// normalizes to without going through HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/carrierdesk/rates-tracker/internal/common"
	"github.com/carrierdesk/rates-tracker/internal/lookup"
	"github.com/carrierdesk/rates-tracker/internal/repository"
)

func main() {
	flag.Parse()
	line := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(line) == "" {
		fmt.Fprintln(os.Stderr, "usage: ratelookup <query line>, e.g. ratelookup ground zone 2 3lb")
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg := common.LoadConfig()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{
		DSN:         cfg.Database.DSN,
		DialTimeout: cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repo, err := repository.NewRateRepository(ctx, db, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init repository: %v\n", err)
		os.Exit(1)
	}

	price, err := lookup.NewService(repo, logger).Price(ctx, line)
	if err != nil {
		var qerr *lookup.QueryError
		if errors.As(err, &qerr) {
			fmt.Fprintf(os.Stderr, "no price: %v\n", qerr)
			for _, f := range qerr.Fields {
				if len(f.Known) > 0 {
					fmt.Fprintf(os.Stderr, "  known %s values: %s\n", f.Field, strings.Join(f.Known, ", "))
				}
			}
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s\n", price.StringFixed(2))
}
