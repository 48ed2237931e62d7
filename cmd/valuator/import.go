package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/trogers1052/portfolio-valuation/internal/database"
	"github.com/trogers1052/portfolio-valuation/internal/store"
)

// importCmd copies a wallet CSV into the wallet_positions table.
type importCmd struct {
	wallet string
}

func (*importCmd) Name() string     { return "import-wallet" }
func (*importCmd) Synopsis() string { return "replace the database wallet with a CSV wallet" }
func (*importCmd) Usage() string {
	return `valuator import-wallet [-wallet <file.csv>]

  Reads the wallet CSV and replaces every row of wallet_positions with it.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet CSV to import (defaults to WALLET_CSV_PATH)")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, log, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	path := c.wallet
	if path == "" {
		path = cfg.Store.WalletCSVPath
	}

	positions, err := store.NewCSVWallet(path, log).LoadPositions(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := db.ReplaceWallet(ctx, positions); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	log.Info().Str("file", path).Int("positions", len(positions)).Msg("Wallet imported")
	return subcommands.ExitSuccess
}
