package main

import (
	"fmt"

	"ssea/domain/enrichment"

	"github.com/spf13/cobra"
)

func newMethodsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List the weighting methods",
		Long: `List the weighting methods accepted by --weight-hit and --weight-miss.

A method weighted_pX raises each sample's absolute weight to the power X;
weighted is power 1 and unweighted ignores the weights.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range enrichment.WeightMethods() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
