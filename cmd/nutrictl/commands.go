package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"nutristat-api/internal/client"
	"nutristat-api/internal/nutrition"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newApp(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "nutrictl",
		Usage: "Query a nutristat api server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "Base url of the api",
				Sources: cli.EnvVars("NUTRISTAT_SERVER"),
			},
			&cli.StringFlag{
				Name:    "format",
				Value:   formatJSON,
				Usage:   "Output format (json or yaml)",
				Sources: cli.EnvVars("NUTRISTAT_FORMAT"),
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 30 * time.Second,
				Usage: "Request timeout",
			},
		},
		Commands: []*cli.Command{
			predictCmd(out),
			recommendCmd(out),
			historyCmd(out),
		},
	}
}

func newClient(cmd *cli.Command) *client.Client {
	return client.New(cmd.String("server"), cmd.Duration("timeout"))
}

func predictCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Classify a child's nutrition status and store the result",
		Flags: []cli.Flag{
			&cli.FloatFlag{Name: "tb", Usage: "Height in centimetres", Required: true},
			&cli.FloatFlag{Name: "bb", Usage: "Weight in kilograms", Required: true},
			&cli.FloatFlag{Name: "usia", Usage: "Age", Required: true},
			&cli.StringFlag{
				Name:     "jenis-kelamin",
				Aliases:  []string{"sex"},
				Usage:    fmt.Sprintf("Sex (%q or %q)", nutrition.Male, nutrition.Female),
				Required: true,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			res, err := newClient(cmd).Predict(ctx, client.PredictRequest{
				Height: cmd.Float("tb"),
				Weight: cmd.Float("bb"),
				Age:    cmd.Float("usia"),
				Sex:    nutrition.Sex(cmd.String("jenis-kelamin")),
			})
			if err != nil {
				return err
			}
			return render(out, format, res)
		},
	}
}

func recommendCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Sample foods for a nutrition category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "category",
				Usage:    fmt.Sprintf("One of %q, %q or %q", nutrition.WellNourished, nutrition.Undernourished, nutrition.Overnourished),
				Required: true,
			},
			&cli.IntFlag{Name: "n", Value: -1, Usage: "Number of foods, server default when unset"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			res, err := newClient(cmd).Recommend(ctx, cmd.String("category"), int(cmd.Int("n")))
			if err != nil {
				return err
			}
			return render(out, format, res)
		},
	}
}

func historyCmd(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Read stored predictions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every stored prediction",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					format, err := outputFormat(cmd)
					if err != nil {
						return err
					}
					records, err := newClient(cmd).ListHistory(ctx)
					if err != nil {
						return err
					}
					return render(out, format, records)
				},
			},
			{
				Name:      "get",
				Usage:     "Show one stored prediction",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					format, err := outputFormat(cmd)
					if err != nil {
						return err
					}
					id := cmd.Args().First()
					if id == "" {
						return fmt.Errorf("missing record id")
					}
					record, err := newClient(cmd).GetHistory(ctx, id)
					if err != nil {
						return err
					}
					return render(out, format, record)
				},
			},
		},
	}
}

func outputFormat(cmd *cli.Command) (string, error) {
	switch f := cmd.String("format"); f {
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", f)
	}
}

func render(w io.Writer, format string, v any) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
