package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/models"
)

func newNodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage graph nodes",
	}
	cmd.AddCommand(nodeCreateCmd())
	cmd.AddCommand(nodeGetCmd())
	cmd.AddCommand(nodeDeleteCmd())
	return cmd
}

func nodeCreateCmd() *cobra.Command {
	var nodeType, propsJSON, source string
	var confidence float64

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a node (idempotent per type and name)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := models.CreateNodeRequest{
				Type:   nodeType,
				Name:   args[0],
				Source: source,
			}
			if cmd.Flags().Changed("confidence") {
				req.Confidence = &confidence
			}
			if propsJSON != "" {
				if err := json.Unmarshal([]byte(propsJSON), &req.Properties); err != nil {
					fatal("parse props", err)
				}
			}
			id, err := graphStore.CreateNode(context.Background(), req)
			if err != nil {
				fatal("create node", err)
			}
			output(map[string]string{"id": id}, id)
		},
	}
	cmd.Flags().StringVar(&nodeType, "type", "", "Entity type (crop, disease, pest, treatment, weather, location, season, market_factor, soil)")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	cmd.Flags().StringVar(&source, "source", "", "Provenance tag")
	cmd.Flags().Float64Var(&confidence, "confidence", 1.0, "Confidence in [0,1]")
	return cmd
}

func nodeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a node by id",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			node, err := graphStore.GetNode(context.Background(), args[0])
			if err != nil {
				fatal("get node", err)
			}
			output(node, node.ID)
		},
	}
}

func nodeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a node and its edges",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := graphStore.DeleteNode(context.Background(), args[0]); err != nil {
				fatal("delete node", err)
			}
			fmt.Println("deleted")
		},
	}
}
