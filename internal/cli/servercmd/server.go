package servercmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	common "github.com/cuihairu/bonfire/internal/cli/common"
	"github.com/cuihairu/bonfire/services/server/bootstrap"
)

var intKeys = []string{
	"port",
	"game.quest_claim_cooldown_seconds",
	"scheduler.stack_process_interval_seconds",
	"payment.chain_id",
}

// New returns the `bonfire server` command.
func New() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the bonfire game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			common.SetupLoggerWithFile("info", "console", "", 0, 0, 0, false)
			v, err := Load(cfgFile, cmd)
			if err != nil {
				return err
			}
			common.SetupLoggerFromViper(v)
			if err := common.ValidateServerConfig(v, false); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}
			c, err := Decode(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return bootstrap.Run(ctx, c)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml), supports top-level 'server:' section")
	cmd.Flags().StringSlice("include", nil, "extra config files merged in order")
	cmd.Flags().String("profile", "", "optional profiles.<name> overlay")
	cmd.Flags().String("name", "bonfire", "service name")
	cmd.Flags().String("host", "0.0.0.0", "listen host")
	cmd.Flags().Int("port", 8080, "listen port")
	cmd.Flags().String("log.level", "info", "log level: debug|info|warn|error")
	cmd.Flags().String("log.format", "console", "log format: console|json")
	return cmd
}

// Load reads the config file, environment and flags into one viper
// instance. Precedence follows viper: flag > env > file > default.
func Load(cfgFile string, cmd *cobra.Command) (*viper.Viper, error) {
	opts := common.LoadOptions{File: cfgFile}
	if cmd != nil {
		opts.Includes, _ = cmd.Flags().GetStringSlice("include")
		opts.Profile, _ = cmd.Flags().GetString("profile")
	}
	v, err := common.LoadServerConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		slog.Info("config loaded", "file", cfgFile, "includes", len(opts.Includes), "profile", opts.Profile)
	}
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Decode hands the merged settings to the go-zero loader so field
// defaults and option checks still apply.
func Decode(v *viper.Viper) (bootstrap.Config, error) {
	for _, k := range intKeys {
		if v.IsSet(k) {
			v.Set(k, v.GetInt(k))
		}
	}
	settings := v.AllSettings()
	for _, k := range []string{"config", "include", "profile"} {
		delete(settings, k)
	}
	if lg, ok := settings["log"].(map[string]any); ok {
		// log.* drives slog; go-zero's own Log section uses different keys.
		if _, goZero := lg["mode"]; !goZero {
			delete(settings, "log")
		}
	}
	raw, err := yaml.Marshal(settings)
	if err != nil {
		return bootstrap.Config{}, fmt.Errorf("encode settings: %w", err)
	}
	c, err := bootstrap.LoadConfig(raw)
	if err != nil {
		return bootstrap.Config{}, fmt.Errorf("load config: %w", err)
	}
	return c, nil
}
