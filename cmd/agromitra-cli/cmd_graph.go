package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Graph inspection commands",
	}
	cmd.AddCommand(graphContextCmd())
	cmd.AddCommand(graphCheckCmd())
	return cmd
}

func graphContextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "context <id>",
		Short: "Get a node with its resolved relationships",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result, err := graphStore.EntityContext(context.Background(), args[0])
			if err != nil {
				fatal("context", err)
			}
			output(result, result.Entity.ID)
		},
	}
}

func graphCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <node-id>",
		Short: "Report legacy reverse edges around a node missing their forward twin",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			warnings, err := graphStore.CheckSymmetry(context.Background(), args[0])
			if err != nil {
				fatal("check", err)
			}
			if len(warnings) == 0 {
				output(map[string]int{"asymmetric_edges": 0}, "0")
				return
			}
			output(warnings, "")
		},
	}
}
