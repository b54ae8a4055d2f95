package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-ledger-service/config"
	"github.com/fekuna/omnipos-ledger-service/internal/app"
	"github.com/fekuna/omnipos-ledger-service/internal/backup"
	backupUCPkg "github.com/fekuna/omnipos-ledger-service/internal/backup/usecase"
	"github.com/fekuna/omnipos-ledger-service/internal/event"
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	decimal.MarshalJSONWithoutQuotes = true

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	fileFlag := &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "backup bundle to read; the configured store is used when empty",
	}

	return &cli.App{
		Name:   "ledgerctl",
		Usage:  "inspect and move ledger data",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOGGER_LEVEL"}},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check every bill of a bundle against its masters",
				ArgsUsage: "<bundle.json>",
				Action: func(c *cli.Context) error {
					b, err := readBundle(c.Args().First())
					if err != nil {
						return err
					}
					bad := validateBundle(c.App.Writer, b)
					if bad > 0 {
						return cli.Exit(fmt.Sprintf("%d of %d bills are invalid", bad, len(b.Bills)), 2)
					}
					fmt.Fprintf(c.App.Writer, "%d bills ok\n", len(b.Bills))
					return nil
				},
			},
			{
				Name:  "report",
				Usage: "print dashboard metrics as JSON",
				Flags: []cli.Flag{
					fileFlag,
					&cli.StringFlag{Name: "shop", Value: ledger.AllShops},
					&cli.StringFlag{Name: "start", Usage: "inclusive YYYY-MM-DD"},
					&cli.StringFlag{Name: "end", Usage: "inclusive YYYY-MM-DD"},
				},
				Action: func(c *cli.Context) error {
					b, err := loadBundle(c)
					if err != nil {
						return err
					}
					filter := ledger.Filter{
						Shop:      c.String("shop"),
						StartDate: c.String("start"),
						EndDate:   c.String("end"),
					}
					for _, d := range []string{filter.StartDate, filter.EndDate} {
						if d == "" {
							continue
						}
						if err := ledger.ValidateDate(d); err != nil {
							return cli.Exit(err.Error(), 2)
						}
					}
					m := ledger.Aggregate(b.Bills, filter, ledger.NewCostResolver(b.Products))
					return writeJSON(c.App.Writer, m)
				},
			},
			{
				Name:  "export",
				Usage: "write the configured store as a backup bundle",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "target file, stdout when empty"},
				},
				Action: func(c *cli.Context) error {
					uc, done, err := openBackup(c)
					if err != nil {
						return err
					}
					defer done()
					b, err := uc.Export(c.Context)
					if err != nil {
						return err
					}
					if path := c.String("out"); path != "" {
						f, err := os.Create(path)
						if err != nil {
							return err
						}
						defer f.Close()
						return writeJSON(f, b)
					}
					return writeJSON(c.App.Writer, b)
				},
			},
			{
				Name:      "import",
				Usage:     "replace the configured store with a backup bundle",
				ArgsUsage: "<bundle.json>",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("import needs a bundle file", 2)
					}
					raw, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					uc, done, err := openBackup(c)
					if err != nil {
						return err
					}
					defer done()
					summary, err := uc.Import(c.Context, raw)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, summary)
				},
			},
		},
	}
}

// openBackup connects the configured store. Events are not published from the CLI; running
// servers pick up the change on their next cache expiry.
func openBackup(c *cli.Context) (backup.UseCase, func(), error) {
	log := newLogger(c)
	store, err := app.OpenStore(config.LoadEnv(), log)
	if err != nil {
		return nil, nil, err
	}
	uc := backupUCPkg.NewBackupUseCase(store.Backup, store.Bills, store.Products, store.Shops, nil, event.Nop{}, log)
	return uc, func() { _ = store.Close() }, nil
}

// loadBundle reads --file when set and the configured store otherwise.
func loadBundle(c *cli.Context) (*model.Bundle, error) {
	if path := c.String("file"); path != "" {
		return readBundle(path)
	}
	uc, done, err := openBackup(c)
	if err != nil {
		return nil, err
	}
	defer done()
	return uc.Export(c.Context)
}

func readBundle(path string) (*model.Bundle, error) {
	if path == "" {
		return nil, cli.Exit("a bundle file is required", 2)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ledger.DecodeBundle(raw)
}

// validateBundle prints every issue and returns the number of invalid bills.
func validateBundle(w io.Writer, b *model.Bundle) int {
	bad := 0
	for i := range b.Bills {
		bill := &b.Bills[i]
		err := ledger.ValidateBill(bill, b.Shops, b.Products)
		if err == nil {
			continue
		}
		bad++
		issues := ledger.Issues(err)
		if len(issues) == 0 {
			fmt.Fprintf(w, "%s (%s %s): %v\n", bill.ID, bill.Date, bill.ShopName, err)
		}
		for _, issue := range issues {
			fmt.Fprintf(w, "%s (%s %s): %s\n", bill.ID, bill.Date, bill.ShopName, issue)
		}
	}
	return bad
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(c *cli.Context) logger.ZapLogger {
	l := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment:     true,
		Encoding:          "console",
		Level:             c.String("log-level"),
		DisableStacktrace: true,
	})
	return l.With(zap.String("cmd", c.Command.Name))
}
