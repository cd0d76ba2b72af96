package soundchange

import (
	"errors"
	"slices"
	"sync"
)

// ApplyAll runs rules over words in order. Every rule is applied to all words
// before the next rule starts, since later rules see the output of earlier
// ones. Within one rule the words are independent and are shared out between
// up to workers goroutines.
//
// A word whose rule application fails is left as it was for that rule and
// the later rules still run. All failures are joined into the returned error.
func ApplyAll(rules []*Rule, words []string, workers int) ([]string, error) {
	out := slices.Clone(words)
	if workers < 1 {
		workers = 1
	}
	workers = min(workers, len(out))

	var failed []error
	for _, rule := range rules {
		errs := make([]error, len(out))
		if workers <= 1 {
			for i, word := range out {
				out[i], errs[i] = rule.Apply(word)
			}
		} else {
			applyParallel(rule, out, errs, workers)
		}
		if err := errors.Join(errs...); err != nil {
			failed = append(failed, err)
		}
	}
	return out, errors.Join(failed...)
}

func applyParallel(rule *Rule, words []string, errs []error, workers int) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				words[i], errs[i] = rule.Apply(words[i])
			}
		}()
	}
	for i := range words {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
