// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/holomush/plughost/pkg/i18n"
)

func newPluginsCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect plugin units",
	}
	cmd.AddCommand(newPluginsListCmd(deps))
	return cmd
}

func newPluginsListCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load every plugin unit and print the plugins that loaded",
		Long: `Load every plugin unit under the plugin root the same way run does,
print the plugins that loaded, then close them. Units that fail are logged
and left out.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps := deps.withDefaults()
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, deps, cmd.ErrOrStderr(), nil)
			if err != nil {
				return err
			}
			defer a.close()

			loader, err := a.loader(deps)
			if err != nil {
				return err
			}
			loader.DiscoverAndLoad(cmd.Context(), cfg.Plugins.Dir, a.context())
			defer loader.CloseAll()

			records := loader.Records()
			if len(records) == 0 {
				cmd.Println(a.strings.T(i18n.KeyNoPlugins))
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"NAME", "TITLE", "TYPE", "UNIT"})
			for _, r := range records {
				t.AppendRow(table.Row{r.Plugin.PluginName(), r.Plugin.DisplayName(), string(r.Type), r.Unit.Name})
			}
			t.Render()
			return nil
		},
	}
}
