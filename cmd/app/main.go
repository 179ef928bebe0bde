package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/balaraja1/katie-kormanik/internal"
	"github.com/balaraja1/katie-kormanik/internal/importer"
	"github.com/balaraja1/katie-kormanik/internal/storage"
	pkgconfig "github.com/balaraja1/katie-kormanik/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		return cfg, nil
	}
	// Default path is optional; the environment alone is a valid config.
	if err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

// runImport rebuilds data/posts.json by scraping the existing blog index,
// either in a local checkout (--dir) or straight in the target repository.
func runImport(ctx context.Context, cmd *cli.Command) error {
	var store storage.Provider

	if dir := cmd.String("dir"); dir != "" {
		fs, err := storage.NewFS(dir)
		if err != nil {
			return err
		}
		store = fs
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.GitHub.Validate(); err != nil {
			return err
		}
		gh, err := storage.NewGitHub(cfg.GitHub.Token, cfg.GitHub.Repo, cfg.GitHub.Branch)
		if err != nil {
			return err
		}
		store = gh
	}

	posts, err := importer.Run(ctx, store)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Printf("imported %d posts into data/posts.json\n", len(posts))
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:   "katie-kormanik",
		Usage:  "Personal site publisher: turns Google Docs into committed blog posts",
		Action: runServe,
		Flags:  []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "One-time rebuild of data/posts.json by scraping blog.html",
				Action: runImport,
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Local site checkout to import from (skips the GitHub API)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
