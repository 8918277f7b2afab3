package script

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/fivedir/autogen/options"
	"github.com/fivedir/autogen/ui"
)

// Outcome is the result of loading one script
type Outcome struct {
	Path   string
	Result *options.Result // nil when Err is set
	Err    error
}

// OK reports whether the script loaded and validated
func (o Outcome) OK() bool { return o.Err == nil }

// CheckAll loads every script through loader with at most concurrency loads
// in flight. Per-script failures are recorded in the outcomes, which follow
// the order of paths; the returned error is only set when ctx ends early.
func CheckAll(ctx context.Context, loader options.Loader, paths []string, concurrency int) ([]Outcome, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome, len(paths))

	ui.Verbosef("checking scripts: count=%d, concurrency=%d", len(paths), concurrency)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := loader.LoadScript(ctx, path)
			outcomes[i] = Outcome{Path: path, Result: res, Err: err}
			if err != nil {
				ui.Verbosef("script failed: path=%s, error=%v", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ui.Verbosef("check complete: scripts=%d", len(outcomes))
	return outcomes, nil
}

// Failed counts outcomes with an error
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}
