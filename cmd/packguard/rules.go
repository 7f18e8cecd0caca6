package packguard

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/packguard/packguard/internal/rules"
)

var flagRulesPreset string

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the detection rules enabled by a preset",
		RunE:  runRules,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().StringVar(&flagRulesPreset, "preset", "", "rule preset (empty = everything)")
}

func runRules(cmd *cobra.Command, _ []string) error {
	content, err := rules.DefaultContentRules(flagRulesPreset)
	if err != nil {
		return err
	}
	extensions, err := rules.DefaultExtensionRules(flagRulesPreset)
	if err != nil {
		return err
	}

	if flagJSON {
		out := struct {
			Preset       string   `json:"preset,omitempty"`
			ContentRules []string `json:"contentRules"`
			Extensions   []string `json:"extensions"`
		}{flagRulesPreset, content.RuleNames(), extensions.Extensions()}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Content rules (%s, %d):\n", content.Name, len(content.Rules))
	for _, r := range content.Rules {
		fmt.Printf("  %-28s %-14s %s\n", r.Name, r.Category, r.Severity)
	}
	fmt.Printf("\nExtensions (%s, %d): %s\n", extensions.Name, extensions.Len(),
		strings.Join(extensions.Extensions(), ", "))
	return nil
}
