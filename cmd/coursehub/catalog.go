package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursehub/internal/catalog"
	"github.com/yungbote/coursehub/internal/store"
)

func newCatalogCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List courses and dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			courses, err := catalog.Load()
			if err != nil {
				return err
			}
			st := store.New(courses)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"courses": st.Courses(), "stats": st.Stats()})
			}

			term, err := opts.terminal()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(out, term.RenderCatalog(st.Courses(), st.Stats()))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a styled listing")
	return cmd
}
