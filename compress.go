// Package bookzip compresses a directory of UTF-8 text files into a single
// archive using per-file Huffman coding, and extracts such archives back into
// a parallel directory. Files are encoded and decoded by concurrent workers;
// every record in the archive is independently decodable from its byte
// offset, so extraction needs no coordination between workers.
package bookzip

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookzip/archive"
)

// CompressOptions configures one compression run.
type CompressOptions struct {
	// InputDir is the directory whose .txt files are archived.
	InputDir string
	// ArchivePath is where the archive is created (truncated if present).
	ArchivePath string
	// Workers caps concurrent encoding workers. Zero or negative means
	// runtime.NumCPU. One worker serializes the run.
	Workers int
	// Logger receives one event per worker on start and finish.
	Logger zerolog.Logger
}

func (opts *CompressOptions) setDefaults() {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
}

// Compress archives every .txt file under opts.InputDir into
// opts.ArchivePath.
//
// The directory header goes out first with a zeroed offset table. Workers
// then encode files concurrently, entirely in memory; each takes the archive
// lock only to claim the current write position as its offset and append its
// finished record, so records land whole, in lock-arrival order. After all
// workers finish, the offset table is patched in place. The first worker
// error aborts the run and leaves the partial archive behind for inspection.
func Compress(opts CompressOptions) error {
	opts.setDefaults()

	books, err := listBooks(opts.InputDir)
	if err != nil {
		return err
	}

	out, err := os.Create(opts.ArchivePath)
	if err != nil {
		return err
	}
	defer out.Close()

	hdr := &archive.Header{
		Dirname: filepath.Base(opts.InputDir),
		Offsets: make([]uint64, len(books)),
	}
	headerLen, err := hdr.WriteTo(out)
	if err != nil {
		return err
	}

	var (
		mu  sync.Mutex
		pos = headerLen
	)
	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	for i, path := range books {
		i, path := i, path
		g.Go(func() error {
			opts.Logger.Info().Int("worker", i).Str("book", path).Msg("encoding")
			rec, err := encodeBook(path)
			if err != nil {
				opts.Logger.Error().Int("worker", i).Str("book", path).Err(err).Msg("encode failed")
				return err
			}

			mu.Lock()
			rec.Offset = uint64(pos)
			hdr.Offsets[i] = rec.Offset
			n, err := rec.WriteTo(out)
			pos += n
			mu.Unlock()

			if err != nil {
				opts.Logger.Error().Int("worker", i).Str("book", path).Err(err).Msg("write failed")
				return fmt.Errorf("write record for %s: %w", path, err)
			}
			opts.Logger.Info().Int("worker", i).Str("book", path).Uint64("offset", rec.Offset).Msg("encoded")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := hdr.PatchOffsets(out); err != nil {
		return fmt.Errorf("patch offset table: %w", err)
	}
	return out.Close()
}

func encodeBook(path string) (*archive.Record, error) {
	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	return archive.EncodeFile(path, text)
}
