package ui

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ConvertProgress renders the conversion's 0-100 progress as a single bar.
// Report matches pipeline.ProgressFunc and is safe to call from the pipeline
// at any rate; percentages never go backwards.
type ConvertProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar

	msg  atomic.Value
	last atomic.Int64
}

func NewConvertProgress(prefix string) *ConvertProgress {
	p := mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)

	cp := &ConvertProgress{p: p}
	cp.msg.Store("starting")

	cp.bar = p.New(
		100,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(prefix+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + cp.msg.Load().(string)
			}),
		),
	)

	return cp
}

// Report implements the pipeline's progress sink.
func (cp *ConvertProgress) Report(pct int, msg string) {
	v := int64(pct)
	for {
		last := cp.last.Load()
		if v <= last {
			v = last
			break
		}
		if cp.last.CompareAndSwap(last, v) {
			break
		}
	}

	if msg != "" {
		cp.msg.Store(msg)
	}
	cp.bar.SetCurrent(v)
}

// Done completes the bar and blocks until it rendered its final state.
func (cp *ConvertProgress) Done() {
	cp.bar.SetCurrent(100)
	cp.bar.SetTotal(100, true)
	cp.p.Wait()
}

// Abort drops the bar without filling it, for failed conversions.
func (cp *ConvertProgress) Abort() {
	cp.bar.Abort(true)
	cp.p.Wait()
}
