package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/econdigest/internal/model"
	"github.com/ppiankov/econdigest/internal/worker"
)

// Collector fetches all configured sources through a shared worker pool
type Collector struct {
	sources []Source
	workers int
	log     io.Writer
}

// NewCollector creates a collector over the given sources. Progress
// goes to log, or stderr when nil.
func NewCollector(sources []Source, workers int, log io.Writer) *Collector {
	if log == nil {
		log = os.Stderr
	}
	return &Collector{
		sources: sources,
		workers: workers,
		log:     log,
	}
}

// fetchJob fetches one source
type fetchJob struct {
	index  int
	source Source
}

// Execute executes the fetch job
func (j *fetchJob) Execute(ctx context.Context) worker.Result {
	papers, err := j.source.Fetch(ctx)
	return &fetchResult{
		index:  j.index,
		name:   j.source.Name(),
		papers: papers,
		err:    err,
	}
}

// fetchResult carries one source's papers back from the pool
type fetchResult struct {
	index  int
	name   string
	papers []model.Paper
	err    error
}

func (r *fetchResult) Err() error { return r.err }

// Collect fetches every source concurrently and returns the papers
// grouped in configured source order regardless of completion order.
// A failing source logs a warning and contributes nothing; one broken
// feed never fails the run.
func (c *Collector) Collect(ctx context.Context) []model.Paper {
	if len(c.sources) == 0 {
		return nil
	}

	pool := worker.NewPool(c.workers)
	pool.Start()

	for i, src := range c.sources {
		pool.Submit(&fetchJob{index: i, source: src})
	}

	ordered := make([]*fetchResult, len(c.sources))
	for _, res := range pool.Wait() {
		if fr, ok := res.(*fetchResult); ok {
			ordered[fr.index] = fr
		}
	}

	var papers []model.Paper
	for i, fr := range ordered {
		if fr == nil {
			fmt.Fprintf(c.log, "✗ %s: no result\n", c.sources[i].Name())
			continue
		}
		if fr.err != nil {
			fmt.Fprintf(c.log, "✗ %s: %v\n", fr.name, fr.err)
			continue
		}
		fmt.Fprintf(c.log, "✓ %s: %d papers\n", fr.name, len(fr.papers))
		papers = append(papers, fr.papers...)
	}

	return papers
}
