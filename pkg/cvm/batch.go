package cvm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"crackvector/internal/models"
	"crackvector/pkg/diagnostics"
	"crackvector/pkg/imageio"
)

// Job describes one build of a batch. Either SegmentationPath or Segmentation
// must be set; RangePath or Range optionally supplies the range image.
type Job struct {
	ID   uuid.UUID
	Name string

	SegmentationPath string
	Segmentation     *models.Raster

	RangePath string
	Range     *models.Raster

	UseRangeForWidth bool
}

// JobResult is the outcome of one job. Err is set when the job failed to load
// or was misconfigured; other jobs are unaffected.
type JobResult struct {
	Job         Job
	Model       *CrackVectorModel
	Stats       Stats
	Diagnostics []diagnostics.Entry
	Err         error
}

// NewJob creates a job for a segmentation file and an optional range file.
func NewJob(segmentationPath, rangePath string) Job {
	return Job{
		ID:               uuid.New(),
		Name:             filepath.Base(segmentationPath),
		SegmentationPath: segmentationPath,
		RangePath:        rangePath,
	}
}

// builder configures a builder for the job.
func (j Job) builder(opts Options, diag *diagnostics.Collector) *Builder {
	b := NewBuilder(opts).WithDiagnostics(diag)
	if j.Segmentation != nil {
		b.UseSegmentation(j.Segmentation)
	} else if j.SegmentationPath != "" {
		b.UseSegmentationFile(j.SegmentationPath)
	}
	if j.Range != nil {
		b.UseRange(j.Range)
	} else if j.RangePath != "" {
		b.UseRangeFile(j.RangePath)
	}
	if j.UseRangeForWidth {
		b.UseRangeForWidth()
	}
	return b
}

// run builds one job.
func (j Job) run(opts Options) JobResult {
	diag := diagnostics.NewCollector(Logger().With("job", j.Name))
	res := JobResult{Job: j}
	model, err := j.builder(opts, diag).Build()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", j.Name, err)
		return res
	}
	res.Model = model
	res.Stats = model.Stats()
	res.Diagnostics = diag.Entries()
	return res
}

// RunBatch builds every job on a pool of workers and returns one result per
// job, in job order. Jobs without an ID are assigned one in the results; the
// caller's slice is not modified. Cancelling ctx stops dispatching and
// undispatched jobs report the context error.
func RunBatch(ctx context.Context, jobs []Job, opts Options, workers int) []JobResult {
	jobs = append([]Job(nil), jobs...)
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	results := make([]JobResult, len(jobs))
	for i := range jobs {
		if jobs[i].ID == uuid.Nil {
			jobs[i].ID = uuid.New()
		}
		results[i] = JobResult{Job: jobs[i]}
	}

	type jobResult struct {
		idx int
		res JobResult
	}
	jobChan := make(chan int)
	resultChan := make(chan jobResult)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				resultChan <- jobResult{idx: idx, res: jobs[idx].run(opts)}
			}
		}()
	}

	dispatched := make([]bool, len(jobs))
	go func() {
		defer close(jobChan)
		for i := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- i:
				dispatched[i] = true
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := 0
	for r := range resultChan {
		results[r.idx] = r.res
		completed++
		Logger().Info("batch progress", "job", r.res.Job.Name, "completed", completed, "total", len(jobs))
	}

	// resultChan is closed only after the dispatcher closed jobChan.
	for i := range jobs {
		if !dispatched[i] {
			results[i].Err = fmt.Errorf("%s: %w", jobs[i].Name, ctx.Err())
		}
	}
	return results
}

// JobsFromDir creates one job per image in segDir, ordered by the number in
// the file name. When rangeDir is set, each job pairs with the range image of
// the same file name there.
func JobsFromDir(segDir, rangeDir string) ([]Job, error) {
	entries, err := os.ReadDir(segDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read segmentation directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && imageio.IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no images found in %s", segDir)
	}

	sort.SliceStable(names, func(i, j int) bool {
		ni, nj := extractNumber(names[i]), extractNumber(names[j])
		if ni != nj {
			return ni < nj
		}
		return names[i] < names[j]
	})

	jobs := make([]Job, 0, len(names))
	for _, name := range names {
		rangePath := ""
		if rangeDir != "" {
			rangePath = filepath.Join(rangeDir, name)
		}
		jobs = append(jobs, NewJob(filepath.Join(segDir, name), rangePath))
	}
	return jobs, nil
}

// extractNumber returns the digits of a file name read as one number, or 0.
func extractNumber(filename string) int {
	digits := make([]rune, 0, 8)
	for _, c := range filepath.Base(filename) {
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0
	}
	return n
}
