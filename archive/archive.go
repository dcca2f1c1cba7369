package archive

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"path"
	"strings"
	"time"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/codec"
	"github.com/hupe1980/pathfiles/internal/hash"
)

// ManifestName is the tar entry name of the manifest.
const ManifestName = "MANIFEST.json"

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

var (
	// ErrSizeChanged is returned when a file's length differs from the size
	// observed at traversal time. The tar stream is unusable afterwards.
	ErrSizeChanged = errors.New("file size changed while archiving")

	// ErrNoManifest is returned when an archive has no manifest entry.
	ErrNoManifest = errors.New("archive has no manifest")
)

// Entry describes one archived file.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	CRC32C  uint32    `json:"crc32c"`
	ModTime time.Time `json:"mod_time"`
}

// Skipped describes a file that could not be opened and is missing from
// the archive.
type Skipped struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Manifest lists the content of an archive.
type Manifest struct {
	Version     int       `json:"version"`
	Compression string    `json:"compression"`
	Created     time.Time `json:"created"`
	Files       []Entry   `json:"files"`
	Skipped     []Skipped `json:"skipped,omitempty"`
}

// Size returns the total number of content bytes.
func (m *Manifest) Size() int64 {
	var n int64
	for _, e := range m.Files {
		n += e.Size
	}
	return n
}

// Options configures Write.
type Options struct {
	// Compression applied to the whole stream.
	Compression Compression
	// Level is the zstd level (1-22). 0 selects the default.
	Level int
	// Codec encodes the manifest. Defaults to codec.Default.
	Codec codec.Codec
	// OnFile, if set, is called after each archived file.
	OnFile func(f *pathfiles.File, e Entry)
}

// Write archives every file of files into w and returns the manifest that
// was appended to the stream.
//
// Files that cannot be opened are skipped and listed in Manifest.Skipped.
// A failure after a file's header has been written (read error, size
// change) aborts the archive.
func Write(ctx context.Context, w io.Writer, files iter.Seq[*pathfiles.File], opts Options) (*Manifest, error) {
	c := opts.Codec
	if c == nil {
		c = codec.Default
	}

	cw, err := compressor(w, opts.Compression, opts.Level)
	if err != nil {
		return nil, err
	}

	tw := tar.NewWriter(cw)

	m := &Manifest{
		Version:     ManifestVersion,
		Compression: opts.Compression.String(),
		Created:     time.Now().UTC(),
	}

	for f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e, skipErr, err := writeFile(ctx, tw, f)
		if err != nil {
			return nil, err
		}
		if skipErr != nil {
			m.Skipped = append(m.Skipped, Skipped{Path: f.Path(), Error: skipErr.Error()})
			continue
		}

		m.Files = append(m.Files, e)
		if opts.OnFile != nil {
			opts.OnFile(f, e)
		}
	}

	data, err := codec.Encode(c, m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}

	hdr := &tar.Header{
		Name:       ManifestName,
		Mode:       0o644,
		Size:       int64(len(data)),
		ModTime:    m.Created,
		Format:     tar.FormatPAX,
		PAXRecords: codec.Tag(c),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return nil, err
	}
	if _, err := tw.Write(data); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := cw.Close(); err != nil {
		return nil, err
	}

	return m, nil
}

// writeFile streams one file into tw. A non-nil skip error reports a file
// that could not be opened and was left out.
func writeFile(ctx context.Context, tw *tar.Writer, f *pathfiles.File) (e Entry, skip error, err error) {
	e = Entry{
		Name:    entryName(f),
		Size:    f.Size(),
		ModTime: f.ModTime(),
	}

	h := hash.NewCRC32C()
	var (
		n       int64
		started bool
	)

	start := func() error {
		started = true
		return tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     e.Name,
			Mode:     int64(f.Mode().Perm()),
			Size:     e.Size,
			ModTime:  e.ModTime,
		})
	}

	for chunk, err := range f.Stream(ctx) {
		if err != nil {
			var openErr *pathfiles.OpenError
			if !started && errors.As(err, &openErr) && ctx.Err() == nil {
				return e, err, nil
			}
			return e, nil, fmt.Errorf("archive %s: %w", f.Path(), err)
		}

		if !started {
			if err := start(); err != nil {
				return e, nil, err
			}
		}

		if n+int64(len(chunk)) > e.Size {
			return e, nil, fmt.Errorf("%w: %s", ErrSizeChanged, f.Path())
		}

		_, _ = h.Write(chunk)
		if _, err := tw.Write(chunk); err != nil {
			return e, nil, err
		}
		n += int64(len(chunk))
	}

	if !started {
		if err := start(); err != nil {
			return e, nil, err
		}
	}

	if n != e.Size {
		return e, nil, fmt.Errorf("%w: %s", ErrSizeChanged, f.Path())
	}

	e.CRC32C = h.Sum32()
	return e, nil, nil
}

func entryName(f *pathfiles.File) string {
	name := strings.TrimLeft(path.Clean(strings.ReplaceAll(f.Name(), "\\", "/")), "/")
	if name == "" || name == "." {
		return f.Rel()
	}
	return name
}

// Reader reads an archive written by Write.
type Reader struct {
	*tar.Reader
	release func()
}

// NewReader returns a tar reader over an archive compressed with c.
func NewReader(r io.Reader, c Compression) (*Reader, error) {
	dr, release, err := decompressor(r, c)
	if err != nil {
		return nil, err
	}
	return &Reader{Reader: tar.NewReader(dr), release: release}, nil
}

// Close releases decoder resources. It does not close the underlying reader.
func (r *Reader) Close() error {
	r.release()
	return nil
}

// ReadManifest scans an archive and decodes its manifest.
func ReadManifest(r io.Reader, c Compression) (*Manifest, error) {
	ar, err := NewReader(r, c)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	for {
		hdr, err := ar.Next()
		if err == io.EOF {
			return nil, ErrNoManifest
		}
		if err != nil {
			return nil, err
		}
		if hdr.Name != ManifestName {
			continue
		}

		dec, err := codec.FromTag(hdr.PAXRecords)
		if err != nil {
			return nil, fmt.Errorf("manifest: %w", err)
		}

		data, err := io.ReadAll(ar)
		if err != nil {
			return nil, err
		}

		var m Manifest
		if err := dec.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
		return &m, nil
	}
}
