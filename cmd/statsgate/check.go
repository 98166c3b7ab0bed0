package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arenalytics/statsgate/pkg/config"
)

func newCheckCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a gateway config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok: listen=%s redis=%s upstream=%s\n",
				cfg.Listen, cfg.Redis.Addr, cfg.Upstream.DSN)
			for name, class := range cfg.Classes {
				fmt.Fprintf(out, "class %s: result_ttl=%s quotas=%d cache=%q\n",
					name, class.ResultTTL, len(class.Quotas), class.Cache.Directive().Header())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", getEnv("STATSGATE_CONFIG", "statsgate.yaml"), "path to config file")
	return cmd
}
