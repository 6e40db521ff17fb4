// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Command gen-schema writes the JSON Schema for plugin.yaml manifests. With
// --check it exits non-zero when the file on disk is out of date instead.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/holomush/plughost/internal/plugin"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "gen-schema: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("gen-schema", pflag.ContinueOnError)
	outPath := flags.StringP("output", "o", filepath.Join("schemas", "plugin.schema.json"), "schema file to write")
	check := flags.Bool("check", false, "fail if the schema file is missing or stale instead of writing it")
	if err := flags.Parse(args); err != nil {
		return err
	}

	schema, err := plugin.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}

	if *check {
		current, err := os.ReadFile(*outPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", *outPath, err)
		}
		if !bytes.Equal(current, schema) {
			return fmt.Errorf("%s is stale; run gen-schema", *outPath)
		}
		_, _ = fmt.Fprintf(out, "%s is up to date\n", *outPath)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := os.WriteFile(*outPath, schema, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *outPath, err)
	}
	_, _ = fmt.Fprintf(out, "Generated %s\n", *outPath)
	return nil
}
