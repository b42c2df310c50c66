package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/models"
)

func newEdgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Manage graph edges",
	}
	cmd.AddCommand(edgeCreateCmd())
	cmd.AddCommand(edgeDeleteCmd())
	cmd.AddCommand(edgeListCmd())
	cmd.AddCommand(edgeTraverseCmd())
	return cmd
}

func edgeCreateCmd() *cobra.Command {
	var propsJSON, sourceRef string
	var confidence float64

	cmd := &cobra.Command{
		Use:   "create <source> <relation> <target>",
		Short: "Create an edge between two existing nodes",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			req := models.CreateEdgeRequest{
				Source:    args[0],
				Relation:  args[1],
				Target:    args[2],
				SourceRef: sourceRef,
			}
			if cmd.Flags().Changed("confidence") {
				req.Confidence = &confidence
			}
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &req.Properties); err != nil {
					fatal("parse props", err)
				}
			}
			if err := graphStore.CreateEdge(context.Background(), req); err != nil {
				fatal("create edge", err)
			}
			fmt.Println("created")
		},
	}
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	cmd.Flags().StringVar(&sourceRef, "source-ref", "", "Provenance tag")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "Confidence in [0,1]")
	return cmd
}

func edgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <source> <relation> <target>",
		Short: "Delete an edge",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			if err := graphStore.DeleteEdge(context.Background(), args[0], args[1], args[2]); err != nil {
				fatal("delete edge", err)
			}
			fmt.Println("deleted")
		},
	}
}

func edgeListCmd() *cobra.Command {
	var relation string

	cmd := &cobra.Command{
		Use:   "list <node-id>",
		Short: "List edges from a node, both directions, in insertion order",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			edges, err := graphStore.GetEdges(context.Background(), args[0], relation)
			if err != nil {
				fatal("list edges", err)
			}
			if flagFmt == "table" {
				headers := []string{"SOURCE", "RELATION", "TARGET", "CONFIDENCE"}
				var rows [][]string
				for _, e := range edges {
					rows = append(rows, []string{e.Source, e.Relation, e.Target, fmt.Sprintf("%.2f", e.Confidence)})
				}
				formatTable(headers, rows)
				return
			}
			output(edges, "")
		},
	}
	cmd.Flags().StringVar(&relation, "relation", "", "Filter by relation (reverse:<relation> for incoming)")
	return cmd
}

func edgeTraverseCmd() *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "traverse <node-id> <relation>",
		Short: "Traverse one hop along a relation",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			ids, err := graphStore.Traverse(context.Background(), args[0], args[1], reverse)
			if err != nil {
				fatal("traverse", err)
			}
			if flagFmt == "quiet" {
				for _, id := range ids {
					fmt.Println(id)
				}
				return
			}
			output(ids, "")
		},
	}
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Follow edges arriving at the node")
	return cmd
}
