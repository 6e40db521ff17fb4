// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Bullet formats items as a bulleted list, one line per item.
func Bullet(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "  - " + item
	}
	return out
}

// Pairs formats a mapping as "key: value" lines sorted by key, with the
// values aligned.
func Pairs(pairs map[string]any) []string {
	keys := make([]string, 0, len(pairs))
	width := 0
	for k := range pairs {
		keys = append(keys, k)
		if len(k) > width {
			width = len(k)
		}
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%-*s  %v", width+1, k+":", pairs[k])
	}
	return out
}

// Table renders headers and rows as a borderless table.
func Table(headers []string, rows [][]string) []string {
	t := table.NewWriter()
	if len(headers) > 0 {
		hdr := make(table.Row, len(headers))
		for i, h := range headers {
			hdr[i] = h
		}
		t.AppendHeader(hdr)
	}
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, c := range r {
			row[i] = c
		}
		t.AppendRow(row)
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return strings.Split(t.Render(), "\n")
}

// Separator returns a horizontal rule width runes wide.
func Separator(width int) string {
	if width <= 0 {
		width = 40
	}
	return strings.Repeat("-", width)
}
