// Package convert runs a single ordered pass over a .pose stream and
// produces the frames of a pose_frames document.
package convert

import (
	"fmt"
	"io"

	"github.com/heimdex/heimdex-pose/internal/export"
	"github.com/heimdex/heimdex-pose/internal/keypoints"
	"github.com/heimdex/heimdex-pose/internal/poseformat"
)

// Result is the outcome of a completed pass.
type Result struct {
	Frames  []export.Frame
	Total   int
	Skipped int
}

// LineError reports the input line a fatal error occurred on.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

type options struct {
	registry *keypoints.Registry
	limit    int
}

// Option configures Run.
type Option func(*options)

// WithRegistry resolves names against r instead of keypoints.Default.
func WithRegistry(r *keypoints.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLimit stops after n records. Zero or negative means no limit.
func WithLimit(n int) Option {
	return func(o *options) { o.limit = n }
}

// Run decodes every non-blank line of r and resolves names on it. Frames
// without body landmarks are counted in Skipped. Any decode or shape error
// aborts the pass and no frames are returned.
func Run(r io.Reader, names []string, opts ...Option) (Result, error) {
	o := options{registry: keypoints.Default}
	for _, opt := range opts {
		opt(&o)
	}

	if len(names) == 0 {
		names = keypoints.DefaultNames
	}
	if err := o.registry.ValidateNames(names); err != nil {
		return Result{}, err
	}

	res := Result{Frames: []export.Frame{}}
	s := poseformat.NewScanner(r)
	for s.Scan() {
		if o.limit > 0 && res.Total >= o.limit {
			break
		}
		res.Total++

		frame, err := poseformat.DecodeLine(s.Text())
		if err != nil {
			return Result{}, &LineError{Line: s.Line(), Err: err}
		}

		kp, ok, err := o.registry.Resolve(frame, names)
		if err != nil {
			return Result{}, &LineError{Line: s.Line(), Err: err}
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Frames = append(res.Frames, export.Frame{Keypoints: kp})
	}
	if err := s.Err(); err != nil {
		return Result{}, fmt.Errorf("failed to read input: %w", err)
	}
	return res, nil
}
