package cli

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/matzehuels/soup/internal/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective settings",
	}
	cmd.AddCommand(c.configShowCommand())
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged settings from defaults, config file, environment and flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var parser koanf.Parser
			switch format {
			case "toml":
				parser = config.TOMLParser()
			case "yaml":
				parser = yaml.Parser()
			default:
				return fmt.Errorf("unknown format %q (want toml or yaml)", format)
			}

			cfg, k, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := k.Marshal(parser)
			if err != nil {
				return fmt.Errorf("encode settings: %w", err)
			}
			if cfg.File != "" {
				printDetail(cmd.ErrOrStderr(), "Config file: %s", cfg.File)
			} else {
				printDetail(cmd.ErrOrStderr(), "No config file found; showing defaults")
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml, yaml")

	return cmd
}
