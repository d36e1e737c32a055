package scanner

import (
	"context"
	"fmt"

	"github.com/bleemesser/gpcat/internal/exifdata"
	"github.com/bleemesser/gpcat/internal/fingerprint"
	"github.com/bleemesser/gpcat/internal/mimetype"
	"github.com/bleemesser/gpcat/internal/videoprobe"
)

// cpuJob is one unit of CPU-bound work submitted to the pool. resultCh
// is a fresh one-slot channel per job, so the submitting I/O worker
// suspends on it without polling and the CPU worker never blocks handing
// back its result, while the pool itself continuously drains jobCh —
// the asynchronous-drain saturation pattern §4.5 calls for, adapted to
// Go's goroutine model (no real OS-process isolation is available
// without paying a subprocess's cost per file, so CPU workers here are
// a fixed number of goroutines, set by the worker_processes setting,
// rather than child processes; exiftool and ffprobe remain true
// subprocesses).
type cpuJob struct {
	path        string
	isVideoHint bool
	useFFProbe  bool
	resultCh    chan<- cpuResult
}

// cpuResult is everything process_file_cpu_work computes, or the error
// that occurred — returned as a value per §4.5/§7, never propagated as a
// panic across the pool boundary.
type cpuResult struct {
	CRC32              string
	ContentFingerprint string
	MIME               string
	Exif               exifdata.Data
	HasExif            bool
	Video              videoprobe.Data
	HasVideo           bool
	Err                error
}

// cpuPool is M goroutines, each holding its own exiftool subprocess
// (mirroring the teacher's one-instance-per-worker pattern) plus a
// shared, stateless ffprobe prober.
type cpuPool struct {
	jobCh       chan cpuJob
	prober      *videoprobe.Prober
	useExiftool bool
	done        chan struct{}
}

// newCPUPool starts workers goroutines and returns the pool. Call close
// after all I/O workers have stopped submitting, per the §4.6 shutdown
// order. useExiftool gates whether each worker starts an exiftool
// subprocess at all — when false, EXIF extraction is never attempted and
// image records carry null EXIF fields, per §6.
func newCPUPool(ctx context.Context, workers int, queueCap int, prober *videoprobe.Prober, useExiftool bool) *cpuPool {
	p := &cpuPool{
		jobCh:       make(chan cpuJob, queueCap),
		prober:      prober,
		useExiftool: useExiftool,
		done:        make(chan struct{}),
	}
	go p.run(ctx, workers)
	return p
}

func (p *cpuPool) run(ctx context.Context, workers int) {
	defer close(p.done)
	workerDone := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { workerDone <- struct{}{} }()
			var extractor *exifdata.Extractor
			if p.useExiftool {
				e, err := exifdata.NewExtractor()
				if err == nil {
					extractor = e
				}
			}
			if extractor != nil {
				defer extractor.Close()
			}
			for job := range p.jobCh {
				job.resultCh <- p.process(ctx, extractor, job)
			}
		}()
	}
	for i := 0; i < workers; i++ {
		<-workerDone
	}
}

func (p *cpuPool) process(ctx context.Context, extractor *exifdata.Extractor, job cpuJob) cpuResult {
	var res cpuResult

	crc, err := fingerprint.CRC32(job.path)
	if err != nil {
		res.Err = fmt.Errorf("cpupool: crc32 %s: %w", job.path, err)
		return res
	}
	res.CRC32 = crc

	content, err := fingerprint.Content(job.path)
	if err != nil {
		res.Err = fmt.Errorf("cpupool: content fingerprint %s: %w", job.path, err)
		return res
	}
	res.ContentFingerprint = content

	mime, err := mimetype.Detect(job.path)
	if err != nil {
		mime = mimetype.Unknown
	}
	res.MIME = mime

	if mimetype.IsImage(mime) && extractor != nil {
		if data, err := extractor.Extract(job.path); err == nil {
			res.Exif, res.HasExif = data, true
		}
	}

	if mimetype.IsVideo(mime) && job.useFFProbe {
		if p.prober != nil && p.prober.Available() {
			if data, err := p.prober.Probe(ctx, job.path); err == nil {
				res.Video, res.HasVideo = data, true
			}
		}
	}

	return res
}

// submit enqueues job and blocks the caller until the pool produces a
// result — the I/O worker's per-file pipeline is sequential by design
// (§4.5: "Per file, the pipeline is sequential and single-owner"), so
// blocking here is correct; concurrency across files comes from running
// N I/O workers, each submitting independently.
func (p *cpuPool) submit(job cpuJob) cpuResult {
	replyCh := make(chan cpuResult, 1)
	job.resultCh = replyCh
	p.jobCh <- job
	return <-replyCh
}

// close stops accepting new jobs and waits for in-flight workers to
// finish, closing their exiftool subprocesses.
func (p *cpuPool) close() {
	close(p.jobCh)
	<-p.done
}
