package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var rawSizes bool

	cmd := &cobra.Command{
		Use:     "list ROOT",
		Short:   "List every regular file under ROOT with its size",
		Args:    cobra.ExactArgs(1),
		Example: `pathfiles list /srv/data --prefix /srv/data`,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.walker().Enumerate(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			var total int64
			for f := range t.All() {
				size := humanize.IBytes(uint64(f.Size()))
				if rawSizes {
					size = strconv.FormatInt(f.Size(), 10)
				}
				fmt.Fprintf(out, "%s\t%s\n", f.Name(), size)
				total += f.Size()
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d files, %s, %d skipped\n",
				t.Count(), humanize.IBytes(uint64(total)), len(t.Skipped()))

			return finish(t)
		},
	}

	cmd.Flags().BoolVar(&rawSizes, "bytes", false, "print sizes in bytes")

	return cmd
}
