// QuickQuote CLI
//
// Usage:
//
//	quickquote render --file estimate.yaml [--out pdfs] [--format xlsx]
//	quickquote sweep --dir pdfs --ttl 1h
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/repository"
	"github.com/cleberrangel/quickquote-api/internal/service"
	"github.com/urfave/cli/v2"
	"go.uber.org/automaxprocs/maxprocs"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "quickquote",
		Usage:   "Gera orçamentos em PDF a partir de arquivos YAML",
		Version: version,
		Writer:  out,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: "Emit JSON logs",
			},
		},

		Before: func(c *cli.Context) error {
			logger.InitWithWriter(c.String("log-level"), c.Bool("log-json"), os.Stderr)
			log := logger.Global()
			_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
				log.Debug().Msgf(format, args...)
			}))
			return nil
		},

		Commands: []*cli.Command{
			renderCommand(),
			sweepCommand(),
		},
	}
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render an estimate file to a document",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the estimate YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "pdfs",
				Usage:   "Output directory",
				EnvVars: []string{"OUTPUT_DIR"},
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Override the file's format (pdf, xlsx)",
			},
			&cli.IntFlag{
				Name:  "slots",
				Value: 10,
				Usage: "Maximum number of line items read from the file",
			},
		},
		Action: runRender,
	}
}

func runRender(c *cli.Context) error {
	form, err := loadEstimateFile(c.String("file"))
	if err != nil {
		return err
	}
	if f := c.String("format"); f != "" {
		form.Format = f
	}

	slots := c.Int("slots")
	if slots < 1 {
		return fmt.Errorf("--slots deve ser positivo, recebido %d", slots)
	}
	if len(form.Slots) > slots {
		logger.Global().Warn().
			Int("items", len(form.Slots)).
			Int("slots", slots).
			Msg("Itens além da capacidade serão ignorados")
	}

	store, err := repository.NewDocumentStore(c.String("out"))
	if err != nil {
		return err
	}

	out, err := service.NewEstimateService(store, slots).Generate(c.Context, form)
	if err != nil {
		return err
	}

	for _, o := range out.Outcomes {
		if o.Status == service.OutcomeOmitted {
			fmt.Fprintf(c.App.ErrWriter, "aviso: %s omitido: %v\n", o.Block, o.Err)
		}
	}

	fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", out.EstimateID, out.FilePath, service.FormatMoney(out.Result.GrandTotal))
	return nil
}

func sweepCommand() *cli.Command {
	return &cli.Command{
		Name:  "sweep",
		Usage: "Delete stored documents older than the retention window",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Value:   "pdfs",
				Usage:   "Output directory to sweep",
				EnvVars: []string{"OUTPUT_DIR"},
			},
			&cli.DurationFlag{
				Name:    "ttl",
				Value:   time.Hour,
				Usage:   "Retention window",
				EnvVars: []string{"DOCUMENT_TTL"},
			},
		},
		Action: runSweep,
	}
}

func runSweep(c *cli.Context) error {
	ttl := c.Duration("ttl")
	if ttl <= 0 {
		return fmt.Errorf("--ttl deve ser positivo, recebido %s", ttl)
	}

	store, err := repository.NewDocumentStore(c.String("dir"))
	if err != nil {
		return err
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	removed, err := service.NewRetentionService(store, ttl, ttl).SweepOnce(ctx)
	for _, name := range removed {
		fmt.Fprintln(c.App.Writer, name)
	}
	return err
}
