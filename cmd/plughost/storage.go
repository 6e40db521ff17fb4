// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"encoding/json"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func newStorageCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Read and edit plugin storage namespaces",
	}
	cmd.AddCommand(newStorageListCmd(deps))
	cmd.AddCommand(newStorageGetCmd(deps))
	cmd.AddCommand(newStorageSetCmd(deps))
	return cmd
}

// withApp loads config, opens storage, runs fn, and closes the app.
func withApp(cmd *cobra.Command, deps *Deps, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, deps.withDefaults(), cmd.ErrOrStderr(), nil)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(cmd.Context(), a)
}

func newStorageListCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List namespaces in the storage document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, deps, func(_ context.Context, a *app) error {
				for _, name := range a.registry.Namespaces() {
					cmd.Println(name)
				}
				return nil
			})
		},
	}
}

func newStorageGetCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <namespace> [path]",
		Short: "Print a namespace, or the value at a gjson path inside it",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, deps, func(_ context.Context, a *app) error {
				data, err := json.Marshal(a.registry.Snapshot(args[0]))
				if err != nil {
					return oops.In("storage").With("namespace", args[0]).Wrap(err)
				}
				if len(args) == 1 {
					cmd.Println(string(data))
					return nil
				}
				result := gjson.GetBytes(data, args[1])
				if !result.Exists() {
					return oops.Code("STORAGE_PATH_NOT_FOUND").
						With("namespace", args[0]).
						With("path", args[1]).
						Errorf("%s has no value at %q", args[0], args[1])
				}
				cmd.Println(result.Raw)
				return nil
			})
		},
	}
}

func newStorageSetCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <namespace> <path> <json>",
		Short: "Set the value at a sjson path inside a namespace and save",
		Long: `Set the value at a sjson path inside a namespace and save the document.
The value must be JSON, so strings need quotes: plughost storage set settings username '"Alice"'.
Every other namespace is written back unchanged.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace, path, value := args[0], args[1], args[2]
			if !json.Valid([]byte(value)) {
				return oops.Code("STORAGE_VALUE_INVALID").With("value", value).
					Hint(`quote strings, e.g. '"Alice"'`).
					Errorf("value must be valid JSON")
			}
			return withApp(cmd, deps, func(ctx context.Context, a *app) error {
				current, err := json.Marshal(a.registry.Snapshot(namespace))
				if err != nil {
					return oops.In("storage").With("namespace", namespace).Wrap(err)
				}
				updated, err := sjson.SetRawBytes(current, path, []byte(value))
				if err != nil {
					return oops.Code("STORAGE_PATH_INVALID").With("path", path).Wrap(err)
				}

				var data map[string]any
				if err := json.Unmarshal(updated, &data); err != nil {
					return oops.In("storage").With("namespace", namespace).Wrap(err)
				}
				if err := a.registry.SavePluginData(ctx, namespace, data); err != nil {
					return err
				}
				cmd.Printf("%s.%s = %s\n", namespace, path, value)
				return nil
			})
		},
	}
}
