package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/coursehub/internal/catalog"
	"github.com/yungbote/coursehub/internal/domain/learning"
	"github.com/yungbote/coursehub/internal/store"
)

func newCompleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <course-id> <session-id>...",
		Short: "Complete sessions in a fresh catalog and show the resulting progress",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			courses, err := catalog.Load()
			if err != nil {
				return err
			}
			st := store.New(courses)
			courseID := args[0]
			if _, ok := st.Course(courseID); !ok {
				return fmt.Errorf("course %q not found", courseID)
			}

			out := cmd.OutOrStdout()
			for _, sessionID := range args[1:] {
				matched := st.CompleteSession(courseID, sessionID)
				c, _ := st.Course(courseID)
				if !matched {
					fmt.Fprintf(out, "%s: no such session, progress unchanged at %.0f%%\n", sessionID, c.Progress())
					continue
				}
				fmt.Fprintf(out, "%s: completed, progress %.0f%%\n", sessionID, c.Progress())
			}

			c, _ := st.Course(courseID)
			term, err := opts.terminal()
			if err != nil {
				return err
			}
			one := []learning.Course{c}
			_, err = fmt.Fprint(out, "\n"+term.RenderCatalog(one, learning.ComputeStats(one)))
			return err
		},
	}
}
