package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var maxDepth int

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the section hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadDocument(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatTree(doc, maxDepth))
		return nil
	},
}

func init() {
	treeCmd.Flags().IntVarP(&maxDepth, "depth", "d", 0, "Maximum depth to print (0 = unlimited)")
	rootCmd.AddCommand(treeCmd)
}
