package engraver

import (
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// ProgressSink receives byte counts as plotting advances; terminal
// rendering is an external concern (spec §1) so the orchestrator only
// ever talks to this interface. nopProgressSink is the default set by
// NewOrchestrator, and stays in place under quiet.
type ProgressSink interface {
	Add(bytesWritten uint64)
	Close()
}

type nopProgressSink struct{}

func (nopProgressSink) Add(uint64) {}
func (nopProgressSink) Close()     {}

// Orchestrator validates a Task, preallocates the output file, wires up
// the Sizer/BufferPool/Scheduler/Writer, and reports timing on
// completion, per spec §4.7.
type Orchestrator struct {
	Platform Platform
	Progress ProgressSink
}

// NewOrchestrator wires the default platform and a no-op progress sink;
// callers running a real CLI replace Progress with a bar-backed sink.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		Platform: NewPlatform(),
		Progress: nopProgressSink{},
	}
}

// Run validates task, then drives a complete plotting run to
// completion (or the first fatal error).
func (o *Orchestrator) Run(task *Task) error {
	start := time.Now()

	if err := o.resolveNonces(task); err != nil {
		return err
	}
	if err := o.validate(task); err != nil {
		return err
	}

	resume := newResumeKeeper(task.OutputPath)
	progress, hadResume, err := resume.read()
	if err != nil {
		return err
	}

	plotSize := task.Nonces * NonceSize

	file, alreadyExists, err := o.openOutput(task, plotSize)
	if err != nil {
		return err
	}
	defer file.Close()

	// A resume sidecar only describes progress against the plot file it
	// sits beside; if that file is gone (deleted, never finished being
	// written, restored without it) there is no partial data to resume
	// from, so a leftover sidecar must not be trusted as a free pass.
	if !alreadyExists {
		progress, hadResume = 0, false
	}

	if hadResume && progress >= task.Nonces {
		return newTaskError(KindAlreadyCompleted, map[string]interface{}{
			"path": task.OutputPath,
		}, "plot %s is already fully completed", task.OutputPath)
	}

	o.logStartupSummary(task, progress)

	bufferSize, err := o.computeBufferSize(task)
	if err != nil {
		return err
	}

	h := newHasher(task.NumericID, task.cpuThreadsOrDefault(), o.Platform)
	pool := newBufferPool(task.NumBuffer(), bufferSize)
	sched := newScheduler(task, pool, h, bufferSize)
	w := newTransposeWriter(file, task.Nonces, pool, resume, task.Benchmark, progress, o.Progress)

	writeErrCh := make(chan error, 1)
	go func() {
		writeErrCh <- w.run()
	}()

	sched.run(progress)

	if err := <-writeErrCh; err != nil {
		return err
	}

	o.Progress.Close()

	if !task.Benchmark {
		if err := resume.remove(); err != nil {
			log.Printf("warning: %s", err)
		}
	}

	o.logCompletionSummary(task, progress, start)

	return nil
}

// resolveNonces implements the nonces==0 "fill the disk" rule: it
// queries free disk space and derives how many whole nonces fit.
func (o *Orchestrator) resolveNonces(task *Task) error {
	if task.Nonces != 0 {
		return nil
	}
	free, err := o.Platform.FreeDiskSpace(task.OutputPath)
	if err != nil {
		return err
	}
	task.Nonces = free / NonceSize
	return nil
}

func (o *Orchestrator) validate(task *Task) error {
	if task.OutputPath == "" {
		return newTaskError(KindPathMissing, nil, "output path is required")
	}

	sectorSize := uint64(4096)
	if task.DirectIO {
		sectorSize = o.Platform.SectorSize(task.OutputPath)
		noncesPerSector := sectorSize / ScoopSize
		if noncesPerSector == 0 {
			noncesPerSector = 1
		}
		rounded := (task.Nonces / noncesPerSector) * noncesPerSector
		if rounded == 0 {
			return newTaskError(KindConfigInvalid, map[string]interface{}{
				"nonces":      task.Nonces,
				"sector_size": sectorSize,
			}, "nonce count %d rounds down to zero nonces under sector alignment %d", task.Nonces, sectorSize)
		}
		if rounded != task.Nonces {
			log.Printf("rounding nonce count from %d down to %d for direct I/O sector alignment", task.Nonces, rounded)
			task.Nonces = rounded
		}
	}

	if task.Nonces == 0 {
		return newTaskError(KindConfigInvalid, nil, "nonce count must be greater than zero")
	}

	if !task.Benchmark {
		plotSize := task.Nonces * NonceSize
		if _, err := os.Stat(task.OutputPath); os.IsNotExist(err) {
			free, ferr := o.Platform.FreeDiskSpace(task.OutputPath)
			if ferr != nil {
				return ferr
			}
			if free < plotSize {
				return newTaskError(KindDiskFull, map[string]interface{}{
					"free":      free,
					"plot_size": plotSize,
				}, "insufficient free disk space: have %s, need %s", humanize.IBytes(free), humanize.IBytes(plotSize))
			}
		}
	}

	return nil
}

func (o *Orchestrator) openOutput(task *Task, plotSize uint64) (file *os.File, alreadyExists bool, err error) {
	_, statErr := os.Stat(task.OutputPath)
	alreadyExists = statErr == nil

	file, err = os.OpenFile(task.OutputPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, false, newTaskError(KindIoFailed, map[string]interface{}{"path": task.OutputPath}, "opening output file %s: %w", task.OutputPath, err)
	}

	if !alreadyExists && !task.Benchmark {
		if err := o.Platform.Preallocate(file, plotSize); err != nil {
			file.Close()
			return nil, false, newTaskError(KindIoFailed, map[string]interface{}{"path": task.OutputPath}, "preallocating %s to %d bytes: %w", task.OutputPath, plotSize, err)
		}
	}

	return file, alreadyExists, nil
}

func (o *Orchestrator) computeBufferSize(task *Task) (uint64, error) {
	free := task.MemBudgetBytes
	if o.Platform != nil {
		if f, err := freeHostMemory(); err == nil {
			free = f
		}
	}

	sectorSize := uint64(4096)
	if task.DirectIO && o.Platform != nil {
		sectorSize = o.Platform.SectorSize(task.OutputPath)
	}

	return resolveBufferSize(sizerInput{
		MemBudget:       task.MemBudgetBytes,
		FreeMemory:      free,
		SectorSize:      sectorSize,
		GPUEnabled:      task.GPUEnabled,
		GPUMemNeeded:    task.GPUMemBytes,
		ZeroCopyBuffers: task.ZeroCopyBuffers,
		NumBuffer:       task.NumBuffer(),
		Nonces:          task.Nonces,
	})
}

func (o *Orchestrator) logStartupSummary(task *Task, progress uint64) {
	if task.Quiet {
		return
	}
	tag := autoDetectSIMDTag()
	log.Printf("engraver: id=%d start=%d nonces=%d simd=%s threads=%d resume_from=%d",
		task.NumericID, task.StartNonce, task.Nonces, tag, task.cpuThreadsOrDefault(), progress)
	log.Printf("engraver: output=%s plot_size=%s mem_budget=%s",
		task.OutputPath, humanize.IBytes(task.Nonces*NonceSize), humanize.IBytes(task.MemBudgetBytes))
}

func (o *Orchestrator) logCompletionSummary(task *Task, startProgress uint64, start time.Time) {
	if task.Quiet {
		return
	}
	elapsed := time.Since(start)
	completed := task.Nonces - startProgress
	noncesPerSec := float64(completed) / elapsed.Seconds()
	mibPerSec := float64(completed*NonceSize) / (1 << 20) / elapsed.Seconds()
	log.Printf("engraver: done in %s (%.2f nonces/s, %.2f MiB/s)", elapsed.Round(time.Millisecond), noncesPerSec, mibPerSec)
}

// cpuThreadsOrDefault returns the configured thread count, falling back
// to the logical CPU count when unset.
func (t *Task) cpuThreadsOrDefault() int {
	if t.CPUThreads > 0 {
		return t.CPUThreads
	}
	return defaultThreadCount()
}
