package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRouteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "route <scenario.yaml>",
		Short: "Synthesize forward, return and connector lines and print them as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			p, err := s.plan(cfg.Route)
			if err != nil {
				return err
			}
			log.Info("route synthesized", "scenario", s.Name,
				"forward", len(p.Forward), "return", len(p.Return), "consumers", len(p.Consumers))

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(p); err != nil {
				return err
			}

			return enc.Close()
		},
	}
}
