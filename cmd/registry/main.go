// Command registry serves and manages the versioned artifact store.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mlsteps/internal/artifact"
	"mlsteps/internal/config"
	"mlsteps/internal/data"
	"mlsteps/pkg/utils"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:          "registry",
	Short:        "Versioned artifact registry",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		l, err := utils.Logger(utils.LogOptions{Level: c.Log.Level, Format: c.Log.Format, File: c.Log.File})
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		cfg, logger = c, l
		return nil
	},
}

func openLocal(cmd *cobra.Command) (*artifact.LocalStore, error) {
	return artifact.NewLocal(cmd.Context(), cfg.Artifact.Root, cfg.Artifact.DownloadDir)
}

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local store over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := cfg.Registry.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv := artifact.NewServer(store, filepath.Join(cfg.Artifact.Root, "tmp"), logger)
		return srv.ListenAndServe(ctx, addr)
	},
}

var publishMeta artifact.Meta

var publishCmd = &cobra.Command{
	Use:   "publish FILE",
	Short: "Publish a file as the next version of an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := artifact.Open(cmd.Context(), cfg.Artifact)
		if err != nil {
			return err
		}
		defer artifact.Close(store)

		meta := publishMeta
		if meta.Name == "" {
			meta.Name = filepath.Base(args[0])
		}
		a, err := store.Publish(cmd.Context(), args[0], meta)
		if err != nil {
			logger.Error("publish failed", zap.String("file", args[0]), zap.Error(err))
			return err
		}
		logger.Info("artifact published", zap.String("ref", a.Ref()), zap.String("digest", a.Digest))
		return nil
	},
}

var aliasCmd = &cobra.Command{
	Use:   "alias NAME ALIAS VERSION",
	Short: "Point NAME:ALIAS at a version, e.g. alias model_export prod v3",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(strings.TrimPrefix(args[2], "v"))
		if err != nil {
			return eris.Wrapf(artifact.ErrInvalidRef, "version %q", args[2])
		}
		store, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Alias(cmd.Context(), args[0], args[1], version); err != nil {
			logger.Error("alias failed", zap.Error(err))
			return err
		}
		logger.Info("alias set", zap.String("ref", args[0]+":"+args[1]), zap.Int("version", version))
		return nil
	},
}

var lsCmd = &cobra.Command{
	Use:   "ls NAME",
	Short: "List the versions of an artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocal(cmd)
		if err != nil {
			return err
		}
		defer store.Close()
		versions, err := store.Versions(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, v := range versions {
			a, err := store.Resolve(cmd.Context(), v.Ref())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\t%d\t%s\t%s\n",
				a.Ref(), a.Type, a.Size, a.CreatedAt.Format("2006-01-02 15:04:05"), strings.Join(a.Aliases, ","))
		}
		return nil
	},
}

var (
	seedRows int
	seedSeed int64
	seedName string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic rental listings and publish them as raw data",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.MkdirTemp("", "seed-")
		if err != nil {
			return eris.Wrap(err, "create temp dir")
		}
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, seedName)
		if err := data.GenerateListings(seedRows, seedSeed, path); err != nil {
			return err
		}
		store, err := artifact.Open(cmd.Context(), cfg.Artifact)
		if err != nil {
			return err
		}
		defer artifact.Close(store)
		a, err := store.Publish(cmd.Context(), path, artifact.Meta{
			Name:        seedName,
			Type:        "raw_data",
			Description: "Synthetic NYC rental listings",
		})
		if err != nil {
			return err
		}
		logger.Info("seed data published", zap.String("ref", a.Ref()), zap.Int("rows", seedRows))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	publishCmd.Flags().StringVar(&publishMeta.Name, "name", "", "artifact name (default file name)")
	publishCmd.Flags().StringVar(&publishMeta.Type, "type", "", "artifact type")
	publishCmd.Flags().StringVar(&publishMeta.Description, "description", "", "artifact description")
	_ = publishCmd.MarkFlagRequired("type")
	seedCmd.Flags().IntVar(&seedRows, "rows", 1000, "number of listings")
	seedCmd.Flags().Int64Var(&seedSeed, "seed", 42, "random seed")
	seedCmd.Flags().StringVar(&seedName, "name", "sample.csv", "artifact name")
	rootCmd.AddCommand(serveCmd, publishCmd, aliasCmd, lsCmd, seedCmd)
}

// run executes the root command and flushes the logger whether or not it failed.
func run(args []string) error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
