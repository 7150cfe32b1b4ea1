package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/iliyamo/ndc-feature-tracker/internal/database"
)

func newMigrateCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog and account tables if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			if err := database.CreateTables(ctx, db); err != nil {
				return err
			}
			cmd.Println("tables ready")
			return nil
		},
	}
}

func newSeedCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample airlines, features and implementations into an empty catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := s.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			log := s.logger()
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()
			if err := database.CreateTables(ctx, db); err != nil {
				return err
			}
			seeded, err := database.Seed(ctx, db, log)
			if err != nil {
				return err
			}
			if seeded {
				cmd.Println("catalog seeded")
			} else {
				cmd.Println("catalog already has airlines, nothing to do")
			}
			return nil
		},
	}
}
