// Package pipeline drives N fetch+extract tasks concurrently under a
// connection-count cap. Tasks are fully independent: one slot failing
// never cancels, delays, or reorders any other slot, and results always
// come back in the order the URLs were supplied.
package pipeline

import (
	"fmt"
	"sync"

	"webtome/models"
)

// Task fetches and extracts a single URL. Implementations own their
// document tree exclusively for the call's lifetime, so the pipeline
// needs no synchronization around them.
type Task func(url string) (*models.Article, error)

// Result is the outcome of one acquisition slot. Exactly one of Article
// and Err is set.
type Result struct {
	URL     string
	Article *models.Article
	Err     error
}

// Failed reports whether the slot produced no article.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Observer receives one event per completed slot, in completion order.
// It runs on worker goroutines and must be safe for concurrent use.
type Observer interface {
	SlotCompleted(url string, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(url string, err error)

func (f ObserverFunc) SlotCompleted(url string, err error) { f(url, err) }

type job struct {
	index int
	url   string
}

// Run executes task for every URL with at most maxConn in flight and
// returns results ordered to match urls. The only fatal error is an
// invalid concurrency cap, detected before any task starts; per-URL
// failures are reported in their slots.
func Run(urls []string, maxConn int, task Task, observer Observer) ([]Result, error) {
	if maxConn < 1 {
		return nil, fmt.Errorf("max connections must be a positive integer, got %d", maxConn)
	}

	results := make([]Result, len(urls))
	jobs := make(chan job, len(urls))

	workers := maxConn
	if workers > len(urls) {
		workers = len(urls)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				article, err := task(j.url)
				// Each worker writes only its own slot, so the results
				// slice needs no lock.
				results[j.index] = Result{URL: j.url, Article: article, Err: err}
				if observer != nil {
					observer.SlotCompleted(j.url, err)
				}
			}
		}()
	}

	for i, url := range urls {
		jobs <- job{index: i, url: url}
	}
	close(jobs)
	wg.Wait()

	return results, nil
}
