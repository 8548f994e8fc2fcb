package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"eventcheckin/internal/adapters/auth"
	"eventcheckin/internal/domain"
	"eventcheckin/internal/repository/postgres"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT for an existing user",
	Long:  `token looks up the user by email and signs a token carrying the user's id and stored role.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			return errors.New("--email is required")
		}
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		expiry, _ := cmd.Flags().GetDuration("expiry")
		if expiry <= 0 {
			expiry = cfg.TokenExpiry
		}

		db, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := postgres.NewUserRepository(db).GetByEmail(cmd.Context(), email)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		if err != nil {
			return err
		}

		token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(user.ID, user.Role, expiry)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "email of the user to sign for")
	tokenCmd.Flags().Duration("expiry", 0, "token lifetime (default TOKEN_EXPIRY)")
}
