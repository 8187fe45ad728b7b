// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/tracelint/services/lint/rules"
)

type ruleInfo struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Recommended bool   `json:"recommended"`
	Description string `json:"description"`
}

func (a *app) rulesCmd() *cobra.Command {
	var (
		preset   string
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := rules.Preset(preset)
			if err != nil {
				return err
			}

			infos := make([]ruleInfo, 0, len(set))
			for _, r := range set {
				if category != "" && string(r.Category()) != category {
					continue
				}
				infos = append(infos, ruleInfo{
					Code:        r.Code(),
					Category:    string(r.Category()),
					Severity:    r.Severity().String(),
					Recommended: rules.IsRecommended(r.Code()),
					Description: r.Description(),
				})
			}

			if asJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tCATEGORY\tSEVERITY\tRECOMMENDED\tDESCRIPTION")
			for _, info := range infos {
				rec := ""
				if info.Recommended {
					rec = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", info.Code, info.Category, info.Severity, rec, info.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&preset, "preset", rules.PresetAll, "rule preset to list: recommended, all")
	cmd.Flags().StringVar(&category, "category", "", "only list rules in this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
