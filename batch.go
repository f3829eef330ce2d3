package tmx

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const batchWorkers = 10

// BatchDecode walks the directory tree rooted at dir, decodes every
// ".tmx" file it finds, and writes a sibling ".png" of the base level
// using palette 0. A single walker feeds the file list to batchWorkers
// concurrent decode workers, the way MegaSD.Scan fans a filesystem walk
// out across a worker pool, adapted here to a flat file list since TMX
// conversion has no per-directory aggregation step to perform. A nil
// logger discards output.
func BatchDecode(dir string, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, walkErrc, err := findTMXFiles(ctx, abs)
	if err != nil {
		return err
	}

	var errcList []<-chan error
	errcList = append(errcList, walkErrc)
	for i := 0; i < batchWorkers; i++ {
		errcList = append(errcList, decodeWorker(ctx, files, logger))
	}

	return waitForBatch(errcList...)
}

func findTMXFiles(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".tmx") {
				return nil
			}

			select {
			case out <- path:
			case <-ctx.Done():
				return errors.New("batch decode cancelled")
			}
			return nil
		})
	}()
	return out, errc, nil
}

func decodeWorker(ctx context.Context, in <-chan string, logger *log.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for path := range in {
			if err := decodeOneFile(path); err != nil {
				logger.Printf("skipping %q: %v\n", path, err)
				continue
			}
			logger.Printf("decoded %q\n", path)
		}
	}()
	return errc
}

func decodeOneFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := Parse(f)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	raster, err := ToRaster(img, 0, -1)
	if err != nil {
		return fmt.Errorf("to_raster: %w", err)
	}

	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
	w, err := os.Create(out)
	if err != nil {
		return err
	}
	defer w.Close()

	return png.Encode(w, raster)
}

func waitForBatch(errs ...<-chan error) error {
	errc := mergeBatchErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeBatchErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
