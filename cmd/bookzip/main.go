package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"bookzip"
)

var (
	flagDecompress = flag.Bool("d", false, "decompress")
	flagIn         = flag.String("i", "", "input directory (compress) or archive (decompress); required")
	flagOut        = flag.String("o", "", "output archive (compress) or output root (decompress)")
	flagWorkers    = flag.Int("j", 0, "max concurrent workers (default: number of CPUs)")
	flagQuiet      = flag.Bool("q", false, "suppress per-file progress")
	flagVersion    = flag.Bool("version", false, "report executable version")
)

const (
	extension = ".bookzip"
	version   = "0.1.0"
)

func quitF(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		panic(err)
	}
	os.Exit(1)
}

func assertNoError(err error) {
	if err != nil {
		quitF("%v\n", err)
	}
}

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Println("bookzip v" + version)
		os.Exit(0)
	}

	if *flagIn == "" {
		quitF("no input specified\n")
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *flagQuiet {
		logger = zerolog.Nop()
	}

	if *flagDecompress {
		out := *flagOut
		if out == "" {
			out = "out"
		}
		assertNoError(bookzip.Decompress(bookzip.DecompressOptions{
			ArchivePath: *flagIn,
			OutputRoot:  out,
			Workers:     *flagWorkers,
			Logger:      logger,
		}))
		return
	}

	out := *flagOut
	if out == "" { // construct the archive name from the input directory
		out = *flagIn + extension
	}
	assertNoError(bookzip.Compress(bookzip.CompressOptions{
		InputDir:    *flagIn,
		ArchivePath: out,
		Workers:     *flagWorkers,
		Logger:      logger,
	}))
}
