package gridpath

import (
	"context"
	"runtime"
	"sync"
)

// Options defines parameters for SearchAll.
type Options struct {
	NumberOfWorkers int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines run searches.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) { options.NumberOfWorkers = numberOfWorkers }
}

// Job is one independent search. Jobs may share a Grid.
type Job struct {
	ID        string
	Grid      *Grid
	Start     Cell
	Goal      Cell
	Heuristic Heuristic
}

// JobResult pairs a Job with its outcome. Err carries either the job's
// configuration error or the context error if the job never ran.
type JobResult struct {
	Job    Job
	Result Result
	Err    error
}

type searchTask struct {
	index int
	job   Job
}

// SearchAll runs every job on a pool of workers and returns the results in
// job order. Cancellation is observed between jobs only; a search that has
// started always runs to completion.
func SearchAll(contextObject context.Context, jobs []Job, options ...Option) []JobResult {
	searchOptions := Options{
		NumberOfWorkers: runtime.NumCPU(),
	}
	for _, option := range options {
		option(&searchOptions)
	}
	if searchOptions.NumberOfWorkers < 1 {
		searchOptions.NumberOfWorkers = 1
	}

	results := make([]JobResult, len(jobs))
	taskChannel := make(chan searchTask)

	var wg sync.WaitGroup
	for i := 0; i < searchOptions.NumberOfWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChannel {
				result, err := Search(task.job.Grid, task.job.Start, task.job.Goal, task.job.Heuristic)
				results[task.index] = JobResult{Job: task.job, Result: result, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		if contextObject.Err() != nil {
			break
		}
		select {
		case <-contextObject.Done():
			break feed
		case taskChannel <- searchTask{index: next, job: jobs[next]}:
		}
	}
	close(taskChannel)
	wg.Wait()

	for ; next < len(jobs); next++ {
		results[next] = JobResult{Job: jobs[next], Result: Result{Path: Path{}}, Err: contextObject.Err()}
	}
	return results
}
