package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/hackboard/backend/config"
	"github.com/hackboard/backend/internal/dataservice"
	"github.com/hackboard/backend/internal/seed"
	"github.com/hackboard/backend/internal/store"
)

// storeOpener builds the store a command works on. driver overrides
// STORE_DRIVER when non-empty.
type storeOpener func(ctx context.Context, driver string, logger *zap.Logger) (*store.Store, error)

func openStore(ctx context.Context, driver string, logger *zap.Logger) (*store.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if driver != "" {
		cfg.Store.Driver = driver
	}
	backend, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return store.New(backend, logger), nil
}

type cli struct {
	open    storeOpener
	driver  string
	verbose bool
	timeout time.Duration
}

func newRootCmd(open storeOpener) *cobra.Command {
	c := &cli{open: open}
	root := &cobra.Command{
		Use:           "hackctl",
		Short:         "Inspect and maintain the hackathon dashboard store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.driver, "driver", "", "store driver (overrides STORE_DRIVER)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(c.seedCmd(), c.resetCmd(), c.dumpCmd(), c.summaryCmd())
	return root
}

func (c *cli) logger(cmd *cobra.Command) *zap.Logger {
	if !c.verbose {
		return zap.NewNop()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(cmd.ErrOrStderr()), zapcore.DebugLevel)
	return zap.New(core)
}

// withStore opens the store, runs fn and closes the store.
func (c *cli) withStore(cmd *cobra.Command, fn func(ctx context.Context, st *store.Store, logger *zap.Logger) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
	defer cancel()
	logger := c.logger(cmd)
	st, err := c.open(ctx, c.driver, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, st, logger)
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write fixture data to every key that is still empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, st *store.Store, logger *zap.Logger) error {
				if err := seed.Ensure(ctx, st, logger); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "store seeded")
				return nil
			})
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Overwrite every key with fixture data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset discards all stored data; pass --yes to confirm")
			}
			return c.withStore(cmd, func(ctx context.Context, st *store.Store, logger *zap.Logger) error {
				if err := seed.Reset(ctx, st, logger); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "store reset to fixtures")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func (c *cli) dumpCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dump [key...]",
		Short: "Print stored lists (all keys by default)",
		Long: `Print the raw stored lists keyed by store key.

Known keys: hackathon_events, hackathon_ideas, hackathon_users, hackathon_notifications.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
			keys := store.Keys
			if len(args) > 0 {
				keys = make([]store.Key, 0, len(args))
				for _, a := range args {
					if !knownKey(store.Key(a)) {
						return fmt.Errorf("unknown key %q", a)
					}
					keys = append(keys, store.Key(a))
				}
			}
			return c.withStore(cmd, func(ctx context.Context, st *store.Store, _ *zap.Logger) error {
				out := make(map[string]interface{}, len(keys))
				for _, k := range keys {
					list, err := store.Read[interface{}](ctx, st, k)
					if err != nil {
						return err
					}
					out[string(k)] = list
				}
				return writeFormatted(cmd.OutOrStdout(), format, out)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: yaml or json")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print dashboard analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "json" {
				return fmt.Errorf("unknown format %q (want yaml or json)", format)
			}
			return c.withStore(cmd, func(ctx context.Context, st *store.Store, logger *zap.Logger) error {
				svc := dataservice.New(st, dataservice.Options{Logger: logger})
				summary, err := svc.Analytics(ctx)
				if err != nil {
					return err
				}
				return writeFormatted(cmd.OutOrStdout(), format, summary)
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", "yaml", "output format: yaml or json")
	return cmd
}

func knownKey(k store.Key) bool {
	for _, known := range store.Keys {
		if k == known {
			return true
		}
	}
	return false
}

// writeFormatted renders v as indented JSON or as YAML. YAML output goes
// through JSON first so field names follow the json tags.
func writeFormatted(w io.Writer, format string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = fmt.Fprintln(w, string(raw))
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}
