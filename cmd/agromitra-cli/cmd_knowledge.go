package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agromitra/agromitra/internal/models"
)

func newKnowledgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"kb"},
		Short:   "Manage the knowledge corpus",
	}
	cmd.AddCommand(knowledgePutCmd())
	cmd.AddCommand(knowledgeGetCmd())
	cmd.AddCommand(knowledgeDeleteCmd())
	cmd.AddCommand(knowledgeSearchCmd())
	return cmd
}

func knowledgePutCmd() *cobra.Command {
	var id, metaJSON string

	cmd := &cobra.Command{
		Use:   "put <text>",
		Short: "Store a text document (embedded via the configured embedder)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := models.PutItemRequest{ID: id, Text: args[0]}
			if metaJSON != "" {
				if err := json.Unmarshal([]byte(metaJSON), &req.Metadata); err != nil {
					fatal("parse metadata", err)
				}
			}

			vec, err := appEmbedder.Generate(context.Background(), args[0])
			if err != nil {
				fatal("embed text", err)
			}
			req.Embedding = vec

			storedID, err := knowledgeStore.Put(context.Background(), req)
			if err != nil {
				fatal("put item", err)
			}
			output(map[string]string{"id": storedID}, storedID)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Item id (generated when empty)")
	cmd.Flags().StringVar(&metaJSON, "metadata", "", "Metadata as JSON")
	return cmd
}

func knowledgeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get a knowledge item",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			item, err := knowledgeStore.Get(context.Background(), args[0])
			if err != nil {
				fatal("get item", err)
			}
			output(item, item.ID)
		},
	}
}

func knowledgeDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a knowledge item",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := knowledgeStore.Delete(context.Background(), args[0]); err != nil {
				fatal("delete item", err)
			}
			fmt.Println("deleted")
		},
	}
}

func knowledgeSearchCmd() *cobra.Command {
	var filterJSON string
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over the corpus",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var filter map[string]any
			if filterJSON != "" {
				if err := json.Unmarshal([]byte(filterJSON), &filter); err != nil {
					fatal("parse filter", err)
				}
			}

			items, err := knowledgeStore.SearchByText(context.Background(), args[0], filter, topK)
			if err != nil {
				fatal("search", err)
			}

			if flagFmt == "table" {
				headers := []string{"ID", "SCORE", "TEXT"}
				var rows [][]string
				for _, it := range items {
					text := it.Text
					if len(text) > 60 {
						text = text[:57] + "..."
					}
					rows = append(rows, []string{it.ID, fmt.Sprintf("%.3f", it.Score), text})
				}
				formatTable(headers, rows)
				return
			}
			output(items, "")
		},
	}
	cmd.Flags().StringVar(&filterJSON, "filter", "", "Exact-match metadata filter as JSON")
	cmd.Flags().IntVar(&topK, "top", 5, "Max results")
	return cmd
}
