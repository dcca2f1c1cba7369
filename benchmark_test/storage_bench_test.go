package benchmark_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/blobstore"
	"github.com/hupe1980/pathfiles/ledger"
	"github.com/hupe1980/pathfiles/upload"
)

// LatencyStore wraps a Store and adds artificial latency to Put.
type LatencyStore struct {
	blobstore.Store
	latency time.Duration
}

func (s *LatencyStore) Put(ctx context.Context, name string, r io.Reader, size int64) error {
	time.Sleep(s.latency)
	return s.Store.Put(ctx, name, r, size)
}

// simulate cloud latency (e.g. S3 typical TTFB can be 10-50ms)
const cloudLatency = 10 * time.Millisecond

func BenchmarkUpload(b *testing.B) {
	root, total := setupTree(b, benchTree)
	ctx := context.Background()

	cases := []struct {
		name    string
		store   func() blobstore.Store
		workers int
	}{
		{"Memory", func() blobstore.Store { return blobstore.NewMemoryStore() }, 0},
		{"Simulated_S3_Workers8", func() blobstore.Store {
			return &LatencyStore{Store: blobstore.NewMemoryStore(), latency: cloudLatency}
		}, 8},
		{"Simulated_S3_Workers64", func() blobstore.Store {
			return &LatencyStore{Store: blobstore.NewMemoryStore(), latency: cloudLatency}
		}, 64},
	}

	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			w := pathfiles.New(pathfiles.WithCapacity(32))

			b.SetBytes(total)
			for b.Loop() {
				t, err := w.Enumerate(ctx, root)
				if err != nil {
					b.Fatal(err)
				}
				u := &upload.Uploader{Store: tc.store(), Workers: tc.workers}
				res, err := u.Run(ctx, t)
				if err != nil {
					b.Fatal(err)
				}
				if res.Failed.GetCardinality() != 0 {
					b.Fatal(res.Err())
				}
			}
		})
	}
}

// BenchmarkUploadResume measures a run where every file is already in the
// ledger.
func BenchmarkUploadResume(b *testing.B) {
	root, _ := setupTree(b, benchTree)
	ctx := context.Background()

	w := pathfiles.New(pathfiles.WithCapacity(32))
	u := &upload.Uploader{Store: blobstore.NewMemoryStore(), Ledger: ledger.NewMemory(), Workers: 16}

	t, err := w.Enumerate(ctx, root)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := u.Run(ctx, t); err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		t, err := w.Enumerate(ctx, root)
		if err != nil {
			b.Fatal(err)
		}
		res, err := u.Run(ctx, t)
		if err != nil {
			b.Fatal(err)
		}
		if res.Unchanged.GetCardinality() != uint64(benchTree.FileCount()) {
			b.Fatalf("unchanged %d, want %d", res.Unchanged.GetCardinality(), benchTree.FileCount())
		}
	}
}
