package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	page2lms "github.com/alnah/go-page2lms"
)

// exportResult holds the outcome of a single export.
type exportResult struct {
	URL        string
	OutputPath string
	Report     *page2lms.Report
	Err        error
	Duration   time.Duration
}

// exportBatch runs jobs concurrently, one exporter per worker.
// Results keep the order of jobs.
func exportBatch(ctx context.Context, pool Pool, jobs []exportJob) []exportResult {
	if len(jobs) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(jobs) {
		concurrency = len(jobs)
	}

	results := make([]exportResult, len(jobs))
	var wg sync.WaitGroup
	queue := make(chan int, len(jobs))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			exp, err := pool.Acquire()
			if err != nil {
				// Exporter creation failed, mark remaining jobs as failed
				for idx := range queue {
					results[idx] = exportResult{URL: jobs[idx].URL, Err: err}
				}
				return
			}
			defer pool.Release(exp)

			for idx := range queue {
				if ctx.Err() != nil {
					results[idx] = exportResult{URL: jobs[idx].URL, Err: ctx.Err()}
					continue
				}
				results[idx] = exportPage(ctx, exp, jobs[idx])
			}
		}()
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)

	wg.Wait()
	return results
}

// exportPage runs one job and times it.
func exportPage(ctx context.Context, exp pageExporter, job exportJob) exportResult {
	start := time.Now()
	result := exportResult{URL: job.URL, OutputPath: job.OutputPath}

	res, err := exp.ExportToFile(ctx, job.URL, job.OutputPath)
	result.Duration = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}
	result.Report = res.Report
	return result
}

// resultSummary holds the count of succeeded and failed exports.
type resultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed exports.
func countResults(results []exportResult) resultSummary {
	var summary resultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs export results and returns the number of failures.
// Failures of a single export are left to the caller's error line.
func printResults(results []exportResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)
	batch := len(results) > 1

	for _, r := range results {
		if r.Err != nil {
			if batch {
				fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.URL, r.Err)
			}
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.URL, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Main content with inline styles saved to %s\n", r.OutputPath)
		}
	}

	if !quiet && batch {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
