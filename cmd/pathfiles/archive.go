package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/archive"
	"github.com/hupe1980/pathfiles/codec"
)

func newArchiveCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive ROOT",
		Short: "Write every regular file under ROOT into a compressed tar archive",
		Long: `archive streams the files under ROOT one at a time into a tar archive
and appends a MANIFEST.json entry listing each file with its size and
CRC32C checksum. Use "-" as output to write to stdout.`,
		Args:    cobra.ExactArgs(1),
		Example: `pathfiles archive /srv/data -o data.tar.zst --compression zstd`,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			ac := a.cfg.Archive

			comp, err := archive.ParseCompression(ac.Compression)
			if err != nil {
				return err
			}

			c, ok := codec.ByName(ac.Codec)
			if !ok {
				return fmt.Errorf("unknown codec %q", ac.Codec)
			}

			t, err := a.walker().Enumerate(ctx, args[0])
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				var f *os.File
				f, err = os.Create(output)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := f.Close(); err == nil {
						err = cerr
					}
					if err != nil {
						_ = os.Remove(output)
					}
				}()
				w = f
			}

			bar := newProgress(cmd.ErrOrStderr(), "archiving")

			m, err := archive.Write(ctx, w, t.All(), archive.Options{
				Compression: comp,
				Level:       ac.Level,
				Codec:       c,
				OnFile: func(*pathfiles.File, archive.Entry) {
					_ = bar.Add(1)
				},
			})
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "archived %d files (%s, %s), %d skipped\n",
				len(m.Files), humanize.IBytes(uint64(m.Size())), comp, len(m.Skipped)+len(t.Skipped()))

			return finish(t)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `archive file to write ("-" for stdout)`)
	cmd.Flags().String("compression", "", "stream compression (none, lz4, zstd)")
	cmd.Flags().Int("level", 0, "zstd compression level (1-22, 0 for the default)")
	cmd.Flags().String("codec", "", "manifest codec (json, go-json)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
