package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/njchilds90/gocas"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newRootCmd() *cobra.Command {
	v := newViper()
	var configPath string

	root := &cobra.Command{
		Use:          "gocasd",
		Short:        "HTTP tool server for the gocas algebra kernel",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return readConfigFile(v, configPath)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (YAML)")
	root.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
	_ = v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newServeCmd(v), newConfigCmd(v), newToolsCmd())
	return root
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tool calls over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log)
			gocas.SetLogger(logger)
			gocas.Configure(cfg.Kernel)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg.Server, logger)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Int64("max-body-bytes", 0, "request body limit")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("server.max_body_bytes", cmd.Flags().Lookup("max-body-bytes"))
	return cmd
}

// newConfigCmd prints the effective configuration as YAML.
func newConfigCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := loadConfig(v); err != nil {
				return err
			}
			out, err := yaml.Marshal(v.AllSettings())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range gocas.ToolNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
