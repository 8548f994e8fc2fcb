package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"eventcheckin/internal/clock"
	"eventcheckin/internal/repository/postgres"
	"eventcheckin/internal/seed"
	"eventcheckin/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.yaml>",
	Short: "Load users, events and registrations from a YAML fixture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		fixture, err := seed.Parse(f)
		if err != nil {
			return err
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		clk := clock.NewSystem()
		eventRepo := postgres.NewEventRepository(db)
		registrationRepo := postgres.NewRegistrationRepository(db)
		s := &seed.Seeder{
			Users:         postgres.NewUserRepository(db),
			Events:        services.NewEventService(eventRepo, registrationRepo, clk, logger, cfg.RequestTimeout),
			Registrations: services.NewRegistrationService(postgres.NewTransactor(db), eventRepo, registrationRepo, nil, clk, logger, cfg.RequestTimeout),
			Logger:        logger,
			Now:           clk.Now,
		}
		res, err := s.Apply(cmd.Context(), fixture)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, email := range sortedKeys(res.Users) {
			fmt.Fprintf(out, "user  %s  %s\n", res.Users[email], email)
		}
		for _, name := range sortedKeys(res.Events) {
			fmt.Fprintf(out, "event %s  %s\n", res.Events[name], name)
		}
		fmt.Fprintf(out, "registrations created: %d\n", res.Registrations)
		return nil
	},
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
