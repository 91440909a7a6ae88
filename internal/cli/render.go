package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var outFile string

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the whole document as markdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd.Context())
		if err != nil {
			return err
		}
		md := doc.RenderMarkdown()
		if outFile == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		}
		if err := os.WriteFile(outFile, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outFile, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %d sections to %s\n",
			successStyle.Render("wrote"), doc.Len(), outFile)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write markdown to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}
