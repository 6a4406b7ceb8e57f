package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"go.uber.org/zap"
)

// loadPack reads the pack from Postgres when POSTGRES_DSN is set, otherwise
// from the pack directory.
func (a *app) loadPack(ctx context.Context) (*pack.Pack, error) {
	if a.cfg.PostgresDSN == "" {
		p, err := pack.LoadDir(a.cfg.PackDir)
		if err != nil {
			return nil, err
		}
		a.logger.Info("pack loaded from directory", zap.String("pack_dir", a.cfg.PackDir))
		return p, nil
	}

	db, err := sql.Open("pgx", a.cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	p, err := pack.NewPostgresSource(db, a.logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("pack loaded from postgres")
	return p, nil
}

// loadValidatedPack loads the pack and refuses to continue if it is
// inconsistent. Problems are printed to w.
func (a *app) loadValidatedPack(ctx context.Context, w io.Writer) (*pack.Pack, error) {
	p, err := a.loadPack(ctx)
	if err != nil {
		return nil, err
	}
	if err := reportValidation(w, pack.Validate(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// reportValidation prints a validation report and returns errSilent if the
// pack is unusable. Structural errors take precedence over missing goldens.
func reportValidation(w io.Writer, r pack.Report) error {
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Pack validation errors:")
		for _, e := range r.Errors {
			fmt.Fprintln(w, " -", e)
		}
	}
	if len(r.MissingGolden) > 0 {
		fmt.Fprintln(w, "Missing golden trajectories for scenarios:", r.MissingGolden)
	}
	if !r.OK() {
		return errSilent
	}
	return nil
}
