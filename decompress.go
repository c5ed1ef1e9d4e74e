package bookzip

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"bookzip/archive"
)

// DecompressOptions configures one extraction run.
type DecompressOptions struct {
	// ArchivePath is the archive to extract.
	ArchivePath string
	// OutputRoot is the directory under which the archived directory is
	// recreated, named after the archive's stored dirname.
	OutputRoot string
	// Workers caps concurrent decoding workers. Zero or negative means
	// runtime.NumCPU.
	Workers int
	// Logger receives one event per worker on start and finish.
	Logger zerolog.Logger
}

func (opts *DecompressOptions) setDefaults() {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
}

// Decompress extracts every record of the archive at opts.ArchivePath into
// <OutputRoot>/<dirname>.
//
// The header is read once to learn the offset table. Each worker then opens
// its own handle on the archive, seeks to its record's offset, and decodes
// independently; no lock is shared on the input. Offsets come from the
// header table, which is authoritative over the copies at each record head.
func Decompress(opts DecompressOptions) error {
	opts.setDefaults()

	f, err := os.Open(opts.ArchivePath)
	if err != nil {
		return err
	}
	var hdr archive.Header
	_, err = hdr.ReadFrom(bufio.NewReader(f))
	f.Close()
	if err != nil {
		return fmt.Errorf("read archive header: %w", err)
	}

	outDir := filepath.Join(opts.OutputRoot, hdr.Dirname)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	g := new(errgroup.Group)
	g.SetLimit(opts.Workers)
	for i, offset := range hdr.Offsets {
		i, offset := i, offset
		g.Go(func() error {
			opts.Logger.Info().Int("worker", i).Uint64("offset", offset).Msg("decoding")
			name, err := extractRecord(opts.ArchivePath, offset, outDir)
			if err != nil {
				opts.Logger.Error().Int("worker", i).Uint64("offset", offset).Err(err).Msg("decode failed")
				return fmt.Errorf("record %d at offset %d: %w", i, offset, err)
			}
			opts.Logger.Info().Int("worker", i).Str("book", name).Msg("decoded")
			return nil
		})
	}
	return g.Wait()
}

// extractRecord materializes the record at offset into outDir and returns the
// file name it wrote. It opens a private handle on the archive so concurrent
// workers never share a seek position.
func extractRecord(archivePath string, offset uint64, outDir string) (string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Seek(int64(offset), io.SeekStart); err != nil {
		return "", err
	}
	r := bufio.NewReader(f)
	rec, err := archive.ReadRecord(r)
	if err != nil {
		return "", err
	}
	text, err := rec.DecodeFrom(r)
	if err != nil {
		return "", err
	}

	if err := writeText(filepath.Join(outDir, rec.Filename), text); err != nil {
		return "", err
	}
	return rec.Filename, nil
}
