package main

import (
	"context"
	"fmt"
	"innovation-portal/internal/db"

	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create roles, users and challenges from a YAML seed file",
	Long: `Create roles, users and challenges. Without --file the demo accounts
are seeded. Existing users and challenges are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		seed := db.DefaultSeed()
		if seedFile != "" {
			var err error
			if seed, err = db.LoadSeedFile(seedFile); err != nil {
				return err
			}
		}

		if err := connect(ctx); err != nil {
			return err
		}
		if err := db.Migrate(db.AppDb); err != nil {
			return err
		}
		if err := db.SeedData(ctx, db.AppDb, seed); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d challenges\n", len(seed.Users), len(seed.Challenges))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML seed file")
}
