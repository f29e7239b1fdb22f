package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and keywords",
	Long: `Display the sources the digest command will check, in the order they
are checked, and the keyword list papers are scored against.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		fmt.Printf("Sources (%d):\n", len(cfg.Sources))
		for _, s := range cfg.Sources {
			fmt.Printf("  %-26s %-5s %s\n", s.Name, s.Kind, s.URL)
		}

		fmt.Println()
		fmt.Printf("Keywords (%d):\n", len(cfg.Keywords))
		fmt.Printf("  %s\n", strings.Join(cfg.Keywords, ", "))
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}
