// Package chunk runs bulk work in bounded batches so a cooperative host
// loop stays responsive.
//
// Items are processed strictly in input order, in contiguous chunks. After
// each chunk the runner reports progress, polls the context for
// cancellation, and — when the chunk exceeded its wall-time budget — yields
// the goroutine before continuing. The chunk boundary is the only suspension
// point: no item is ever interrupted mid-flight and nothing is rolled back.
package chunk

import (
	"context"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// Defaults for bulk processing. Budget approximates half a frame at 60fps,
// leaving the host loop room to schedule interactive work between chunks.
const (
	DefaultSize   = 100
	DefaultBudget = 8 * time.Millisecond
)

// Progress is reported to the observer after every chunk.
type Progress struct {
	Phase      string
	Processed  int
	Total      int
	Percentage int
}

// Options tunes a chunked run. The zero value is usable.
type Options struct {
	Size       int           // items per chunk, default DefaultSize
	Budget     time.Duration // wall-time budget per chunk, default DefaultBudget
	Phase      string        // label carried on progress reports and logs
	OnProgress func(Progress)
	Logger     *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.Budget <= 0 {
		o.Budget = DefaultBudget
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Run processes items through handler and collects the results in input
// order. A handler error drops that one item (logged, never fatal).
// Cancellation is honored at chunk boundaries only; the results accumulated
// so far are returned.
func Run[T, R any](ctx context.Context, items []T, handler func(T) (R, error), opts Options) []R {
	out := make([]R, 0, len(items))
	RunSink(ctx, items, handler, func(r R) { out = append(out, r) }, opts)
	return out
}

// RunSink is Run for streaming consumers: each result is handed to sink as
// soon as its item is processed instead of being accumulated. It returns the
// number of items processed, which is less than len(items) only when the
// context was cancelled.
func RunSink[T, R any](ctx context.Context, items []T, handler func(T) (R, error), sink func(R), opts Options) int {
	opts = opts.withDefaults()
	total := len(items)
	processed := 0

	for start := 0; start < total; start += opts.Size {
		if ctx.Err() != nil {
			return processed
		}
		end := min(start+opts.Size, total)
		began := time.Now()
		for _, item := range items[start:end] {
			res, err := handler(item)
			if err != nil {
				opts.Logger.Warn("item skipped",
					zap.String("phase", opts.Phase),
					zap.Any("item", item),
					zap.Error(err))
				continue
			}
			sink(res)
		}
		processed = end
		if opts.OnProgress != nil {
			opts.OnProgress(Progress{
				Phase:      opts.Phase,
				Processed:  processed,
				Total:      total,
				Percentage: percentage(processed, total),
			})
		}
		if time.Since(began) > opts.Budget {
			runtime.Gosched()
		}
	}
	return processed
}

func percentage(processed, total int) int {
	if total == 0 {
		return 100
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}
