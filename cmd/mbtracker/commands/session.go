package commands

import (
	"context"
	"fmt"
	"mangabuff-tracker/internal/components/chrono"
	"mangabuff-tracker/internal/components/telemetry"
	"mangabuff-tracker/internal/scrapers/mangabuff"
	"mangabuff-tracker/internal/snapshot"
	"time"
)

func login(ctx context.Context) (*mangabuff.Session, error) {
	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}
	if *dumpHttp != "" {
		output, err := telemetry.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			return nil, fmt.Errorf("http dump: %w", err)
		}
		opts.HttpDump = output
	}
	return mangabuff.Login(ctx, cfg.Email, cfg.Password, opts, chrono.NewStandardImpl(), tel)
}

// runQuery logs in, runs a single query and stores the run if save is set.
func runQuery(ctx context.Context, query mangabuff.Query, save bool) ([]*mangabuff.Card, error) {
	session, err := login(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	start := time.Now()
	cards, err := session.GetCardsLots(ctx, query)
	if err != nil {
		return nil, err
	}
	tel.ReportDebug("query finished", time.Since(start).String(), len(cards))

	if save {
		store, db, err := snapshot.OpenStore(cfg.Database, tel)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		_, err = store.Save(ctx, snapshot.Run{
			Time:  start,
			Query: query,
			Cards: cards,
		})
		if err != nil {
			return nil, err
		}
	}

	return cards, nil
}
