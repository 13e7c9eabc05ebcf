package main

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/ewilliams-labs/songle/internal/config"
	"github.com/ewilliams-labs/songle/internal/logging"
)

var version = "0.1.0"

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal("songle exited", "err", err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "songle",
		Usage:   "Guess the song from ever longer preview snippets",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   config.DefaultPath,
				Sources: cli.EnvVars("SONGLE_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			playlistCommand(),
			configCommand(),
		},
		Action: serve,
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the HTTP API (default)",
		Action: serve,
	}
}

func playlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Fetch a playlist and list the tracks a game can use",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include tracks without a preview",
			},
		},
		Action: listPlaylist,
	}
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example configuration file",
				Action: initConfig,
			},
		},
	}
}

// loadConfig reads the configured file. The default path is optional; an
// explicitly named file must exist.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config") {
		return config.Load("")
	}
	return cfg, err
}

// setupLogging installs the configured logger as the process default.
func setupLogging(cfg *config.Config) error {
	logger, err := logging.NewLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Install(logger)
	return nil
}

func initConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	log.Info("config written", "path", path)
	return nil
}
