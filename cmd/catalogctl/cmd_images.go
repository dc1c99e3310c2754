package main

import (
	"context"
	"fmt"
	"io"

	"aura-hype/internal/config"
	"aura-hype/internal/images"
	"aura-hype/internal/storage"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type listOptions struct {
	prefix     string
	limit      int
	pageSize   int
	imagesOnly bool
	snippet    bool
}

// catalogctl images:list
func newImagesListCmd() *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:   "images:list",
		Short: "List stored image keys, optionally as product seed SQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			backend, err := storage.New(ctx, config.Load())
			if err != nil {
				return err
			}
			return listImages(ctx, backend, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "only keys starting with this prefix")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "stop after this many keys, 0 lists everything")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 100, "keys fetched per storage request")
	cmd.Flags().BoolVar(&opts.imagesOnly, "images-only", true, "skip keys without an image extension")
	cmd.Flags().BoolVar(&opts.snippet, "snippet", false, "print a draft product INSERT per key")

	return cmd
}

// listImages walks every page of the backend and writes one line per key
func listImages(ctx context.Context, backend storage.Backend, out io.Writer, opts listOptions) error {
	if opts.pageSize <= 0 {
		opts.pageSize = 100
	}

	printed := 0
	cursor := ""
	for {
		page, err := backend.List(ctx, storage.ListOptions{
			Prefix: opts.prefix,
			Cursor: cursor,
			Limit:  opts.pageSize,
		})
		if err != nil {
			return err
		}

		items := page.Items
		if opts.imagesOnly {
			items = lo.Filter(items, func(item storage.ObjectInfo, _ int) bool {
				return images.IsImageKey(item.Key)
			})
		}

		for _, item := range items {
			if opts.limit > 0 && printed >= opts.limit {
				return nil
			}

			line := item.Key
			if opts.snippet {
				line = images.SeedStatement(item.Key)
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
			printed++
		}

		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}
