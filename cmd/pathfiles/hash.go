package main

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/internal/hash"
	"github.com/hupe1980/pathfiles/pipeline"
)

type fileSum struct {
	index uint64
	name  string
	sum   uint32
}

func newHashCmd(a *app) *cobra.Command {
	var (
		base64   bool
		failFast bool
	)

	cmd := &cobra.Command{
		Use:   "hash ROOT",
		Short: "Print the CRC32C checksum of every regular file under ROOT",
		Long: `hash streams every file under ROOT concurrently and prints its CRC32C
checksum in discovery order. At most --capacity files are open at once.`,
		Args:    cobra.ExactArgs(1),
		Example: `pathfiles hash /srv/data --workers 16 --base64`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			t, err := a.walker().Enumerate(ctx, args[0])
			if err != nil {
				return err
			}

			var (
				mu   sync.Mutex
				sums []fileSum
			)

			fn := func(ctx context.Context, f *pathfiles.File) (int64, error) {
				h := hash.NewCRC32C()

				var n int64
				for chunk, err := range f.Stream(ctx) {
					if err != nil {
						return n, err
					}
					_, _ = h.Write(chunk)
					n += int64(len(chunk))
				}

				mu.Lock()
				sums = append(sums, fileSum{index: f.Index(), name: f.Name(), sum: h.Sum32()})
				mu.Unlock()

				return n, nil
			}

			bar := newProgress(cmd.ErrOrStderr(), "hashing")

			report, err := pipeline.ForEach(ctx, t.All(), fn, pipeline.Options{
				Workers:  a.cfg.Walk.Workers,
				FailFast: failFast,
				OnDone: func(*pathfiles.File, int64, error) {
					_ = bar.Add(1)
				},
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}

			slices.SortFunc(sums, func(x, y fileSum) int {
				switch {
				case x.index < y.index:
					return -1
				case x.index > y.index:
					return 1
				}
				return 0
			})

			out := cmd.OutOrStdout()
			for _, s := range sums {
				if base64 {
					fmt.Fprintf(out, "%s  %s\n", hash.Base64(s.sum), s.name)
				} else {
					fmt.Fprintf(out, "%08x  %s\n", s.sum, s.name)
				}
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%d files hashed, %s, %d failed, %d skipped\n",
				report.Processed.GetCardinality(), humanize.IBytes(uint64(report.Bytes)),
				report.Failed.GetCardinality(), len(t.Skipped()))

			if err := report.Err(); err != nil {
				return err
			}
			return finish(t)
		},
	}

	cmd.Flags().BoolVar(&base64, "base64", false, "print checksums as base64 of the big-endian bytes")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first file that cannot be read")

	return cmd
}
