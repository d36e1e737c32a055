package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/bleemesser/gpcat/internal/catalog"
	"github.com/bleemesser/gpcat/internal/catalogerr"
	"github.com/bleemesser/gpcat/internal/config"
	"github.com/bleemesser/gpcat/internal/discover"
	"github.com/bleemesser/gpcat/internal/exifdata"
	"github.com/bleemesser/gpcat/internal/progress"
	"github.com/bleemesser/gpcat/internal/reconcile"
	"github.com/bleemesser/gpcat/internal/videoprobe"
)

// Orchestrator owns one scan's full lifecycle: discovery, the
// I/O-worker/CPU-pool/writer pipeline, and post-scan reconciliation.
// Grounded on the teacher's GetPhotos orchestration (spawn workers, feed
// jobs, close, collect) generalized with errgroup for
// cancellation-propagating shutdown across the whole fleet.
type Orchestrator struct {
	Catalog *catalog.Catalog
	Config  config.Config
	Log     *logrus.Entry
}

// Stats is the final run summary returned to the caller.
type Stats struct {
	Run     *catalog.ScanRun
	Summary progress.Summary
}

// Run executes one complete scan of root. The shutdown sequence below is
// the channel-close idiom's equivalent of §4.6's explicit sentinel
// protocol: producers finish and close work_queue first, which lets I/O
// workers drain and exit, which lets results_queue close, which lets the
// writer drain its final batch and return — the same "writer never
// blocks forever, queues never deadlock full" guarantee the prose
// protocol describes, expressed with Go's native close-to-signal
// mechanism instead of explicit stop flags and sentinel values.
func (o *Orchestrator) Run(ctx context.Context, root string) (*Stats, error) {
	if o.Config.UseFFProbe {
		prober := videoprobe.NewProber()
		if !prober.Available() {
			return nil, catalogerr.NewFatal(catalogerr.ToolMissing, "use_ffprobe is enabled but ffprobe was not found in PATH", nil)
		}
	}
	if o.Config.UseExiftool && !exifdata.Available() {
		return nil, catalogerr.NewFatal(catalogerr.ToolMissing, "use_exiftool is enabled but exiftool was not found in PATH", nil)
	}

	running, err := o.Catalog.RunningRunExists(ctx)
	if err != nil {
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "check for an in-progress run", err)
	}
	if running {
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "a scan run is already in progress for this catalog", nil)
	}

	run, err := o.Catalog.CreateScanRun(ctx)
	if err != nil {
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "create scan run", err)
	}

	albums, err := discover.DiscoverAlbums(root)
	if err != nil {
		o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
		return nil, err
	}
	run.AlbumsTotal = int64(len(albums))

	logAdapter := newSidecarLogAdapter(o.Log)
	files, warnings, err := discover.DiscoverFiles(root, albums, logAdapter)
	if err != nil {
		o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
		return nil, err
	}
	for _, w := range warnings {
		if o.Log != nil {
			o.Log.Warn(w)
		}
	}
	run.TotalDiscovered = int64(len(files))

	albumByPath := make(map[string]discover.Album, len(albums))
	for _, a := range albums {
		albumByPath[a.FolderPath] = a
		if err := o.upsertAlbum(ctx, a, run); err != nil {
			o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
			return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "persist album", err)
		}
	}

	tracker := progress.New(int64(len(files)), o.Log)

	workCh := make(chan WorkItem, o.Config.QueueMaxSize)
	resultsCh := make(chan Result, o.Config.QueueMaxSize)

	prober := videoprobe.NewProber()
	pool := newCPUPool(ctx, o.Config.WorkerProcesses, o.Config.QueueMaxSize, prober, o.Config.UseExiftool)

	w := &writer{
		cat:        o.Catalog,
		run:        run,
		batchSize:  o.Config.BatchSize,
		tracker:    tracker,
		log:        o.Log,
		maxRetries: 5,
	}

	var writerErr error
	var writerWG sync.WaitGroup
	writerWG.Add(1)
	go func() {
		defer writerWG.Done()
		writerErr = w.run_(ctx, resultsCh)
		// If the writer stopped before resultsCh closed (fatal commit
		// error or cancellation), keep draining so no I/O worker blocks
		// forever on a full results queue.
		for range resultsCh {
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < o.Config.WorkerThreads; i++ {
		g.Go(func() error {
			iow := &ioWorker{cat: o.Catalog, pool: pool, useFFProbe: o.Config.UseFFProbe, log: o.Log}
			for item := range workCh {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				res := iow.processOne(gctx, item, time.Now().UTC())
				resultsCh <- res
			}
			return nil
		})
	}

feed:
	for _, f := range files {
		album := albumByPath[f.AlbumFolderPath]
		select {
		case workCh <- WorkItem{File: f, AlbumID: album.ID}:
		case <-gctx.Done():
			break feed
		}
	}
	close(workCh)

	ioErr := g.Wait()
	close(resultsCh)
	writerWG.Wait()
	pool.close()

	if ioErr != nil {
		o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
		return nil, fmt.Errorf("scanner: io worker pool: %w", ioErr)
	}
	if writerErr != nil {
		o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
		return nil, writerErr
	}

	report, err := reconcile.Run(ctx, o.Catalog, run.ID, run.StartTimestamp, albums, files, o.Log)
	if err != nil {
		o.Catalog.FinalizeScanRun(ctx, run, catalog.RunFailed)
		return nil, err
	}
	run.Missing = report.MissingCount
	run.Inconsistent = report.InconsistentCount

	if err := o.Catalog.FinalizeScanRun(ctx, run, catalog.RunCompleted); err != nil {
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "finalize scan run", err)
	}

	errorSummary, err := o.Catalog.SummarizeErrors(ctx, run.ID)
	if err != nil {
		errorSummary = nil
	}
	byCategory := make(map[string]int64, len(errorSummary))
	for _, e := range errorSummary {
		byCategory[e.Category] = e.Count
	}

	tracker.Finish()
	summary := progress.Summary{
		TotalDiscovered:  run.TotalDiscovered,
		Processed:        run.Processed,
		New:              run.New,
		Unchanged:        run.Unchanged,
		Changed:          run.Changed,
		Missing:          run.Missing,
		Errors:           run.Error,
		Inconsistent:     run.Inconsistent,
		Duration:         run.EndTimestamp.Sub(run.StartTimestamp),
		ErrorsByCategory: byCategory,
	}
	progress.LogSummary(o.Log, summary)

	return &Stats{Run: run, Summary: summary}, nil
}

func (o *Orchestrator) upsertAlbum(ctx context.Context, a discover.Album, run *catalog.ScanRun) error {
	now := time.Now().UTC()
	status := catalog.StatusPresent
	if a.Status == discover.AlbumError {
		status = catalog.StatusError
	}
	row := catalog.AlbumRow{
		ID:                a.ID,
		FolderPath:        a.FolderPath,
		Title:             nullStr(a.Title),
		Description:       nullStr(a.Description),
		CreationTimestamp: nullStr(a.CreationTime),
		AccessLevel:       nullStr(a.AccessLevel),
		Status:            status,
		FirstSeen:         now,
		LastSeen:          now,
		ScanRunID:         run.ID,
	}
	return o.Catalog.UpsertAlbum(ctx, row)
}
