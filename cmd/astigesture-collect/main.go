package main

import (
	"context"
	"flag"
	"time"

	"github.com/asticode/go-astigesture"
	"github.com/asticode/go-astigesture/pkg/gocv"
	"github.com/asticode/go-astigesture/pkg/handtracker"
	"github.com/asticode/go-astigesture/pkg/knn"
	"github.com/asticode/go-astilog"
	"github.com/asticode/go-astitools/worker"
	"github.com/pkg/errors"
)

// Flags
var (
	deviceID = flag.Int("d", 0, "the camera device id")
	dirPath  = flag.String("o", "models/training_data", "the output dir path")
	label    = flag.String("l", "", "the gesture label")
	samples  = flag.Int("n", 200, "the number of samples to collect")
	url      = flag.String("u", astihandtracker.DefaultURL, "the hand tracker url")
)

func main() {
	// Parse flags
	flag.Parse()
	astilog.FlagInit()

	// No label
	if *label == "" {
		astilog.Fatal("main: no label provided, use -l")
	}

	// Create worker
	w := astiworker.NewWorker()

	// Handle signals
	w.HandleSignals()

	// Create camera
	cam, err := astigocv.New(astigocv.Options{
		DeviceID: *deviceID,
		Mirror:   true,
	})
	if err != nil {
		astilog.Fatal(errors.Wrap(err, "main: creating camera failed"))
	}
	defer cam.Close()

	// Create hand tracker
	ht := astihandtracker.New(astihandtracker.Options{URL: *url})
	defer ht.Close()

	// Collect
	c := astiknn.NewCollector()
	t := w.NewTask()
	go func() {
		// Make sure to let the worker know when the task is done
		defer t.Done()

		// Collect
		astilog.Infof("main: collecting %d samples for %s", *samples, *label)
		collect(w.Context(), cam, ht, c)

		// Save
		if c.Len() > 0 {
			p, err := c.Save(*dirPath, time.Now())
			if err != nil {
				astilog.Error(errors.Wrap(err, "main: saving samples failed"))
			} else {
				astilog.Infof("main: %d samples saved to %s", c.Len(), p)
			}
		}
		w.Stop()
	}()

	// Blocking pattern
	w.Wait()
}

func collect(ctx context.Context, fs astigesture.FrameSource, e astigesture.LandmarkExtractor, c *astiknn.Collector) {
	for c.Len() < *samples && ctx.Err() == nil {
		// Read frame
		f, err := fs.ReadFrame(ctx)
		if err != nil {
			astilog.Debug(errors.Wrap(err, "main: reading frame failed"))
			continue
		}

		// Extract
		hs, err := e.Extract(ctx, f)
		f.Close()
		if err != nil {
			astilog.Debug(errors.Wrap(err, "main: extracting landmarks failed"))
			continue
		}

		// No hand
		if len(hs) == 0 || len(hs[0]) != astigesture.NumLandmarks {
			continue
		}

		// Add
		c.Add(hs[0].Features(), *label)
		if c.Len()%10 == 0 {
			astilog.Infof("main: %d/%d samples collected", c.Len(), *samples)
		}
	}
}
