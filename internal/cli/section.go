package cli

import (
	"fmt"

	"github.com/dgallion1/rulebook/internal/doctree"
	"github.com/spf13/cobra"
)

var sectionRaw bool

var sectionCmd = &cobra.Command{
	Use:   "section IDX",
	Short: "Show one section and its subsections",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd.Context())
		if err != nil {
			return err
		}
		sec, ok := doc.GetSection(args[0])
		if !ok {
			return fmt.Errorf("section %s not found", doctree.NormalizeIndex(args[0]))
		}
		if sectionRaw {
			_, err := fmt.Fprint(cmd.OutOrStdout(), sec.Markdown())
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatSectionHeader(sec))
		fmt.Fprintln(cmd.OutOrStdout(), sec.Markdown())
		return nil
	},
}

func init() {
	sectionCmd.Flags().BoolVar(&sectionRaw, "raw", false, "Print markdown only")
	rootCmd.AddCommand(sectionCmd)
}
