package runs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/heimdex/heimdex-pose/internal/convert"
	"github.com/heimdex/heimdex-pose/internal/export"
	"github.com/heimdex/heimdex-pose/internal/keypoints"
	"github.com/heimdex/heimdex-pose/internal/logging"
)

// Service converts .pose inputs and records each conversion as a Run.
// A nil Repository disables the history.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logging.WithComponent(logger, "runs")}
}

// ConvertFile converts inputPath and writes the document to outputPath. On
// a conversion failure the returned run carries the failed status and the
// error is returned alongside it; outputPath is left untouched.
func (s *Service) ConvertFile(ctx context.Context, inputPath, outputPath string, names []string, opts ...convert.Option) (*Run, error) {
	if err := export.ValidateOutputPath(outputPath); err != nil {
		return nil, err
	}

	run, err := s.start(ctx, inputPath, outputPath, names)
	if err != nil {
		return nil, err
	}
	logger := logging.WithRunID(s.logger, run.ID)

	f, err := os.Open(inputPath)
	if err != nil {
		return s.fail(ctx, run, fmt.Errorf("failed to open input: %w", err))
	}
	defer f.Close()

	res, err := convert.Run(f, run.Names, opts...)
	if err != nil {
		return s.fail(ctx, run, err)
	}

	n, err := export.WriteFile(outputPath, res.Frames)
	if err != nil {
		return s.fail(ctx, run, err)
	}

	logger.Info("wrote pose frames",
		"input", logging.SanitizePath(inputPath),
		"output", logging.SanitizePath(outputPath),
		"frames", len(res.Frames),
		"size", humanize.Bytes(uint64(n)),
	)
	return s.complete(ctx, run, res)
}

// ConvertReader converts an in-memory input. label identifies the input in
// the run history.
func (s *Service) ConvertReader(ctx context.Context, label string, r io.Reader, names []string, opts ...convert.Option) (*Run, []export.Frame, error) {
	run, err := s.start(ctx, label, "", names)
	if err != nil {
		return nil, nil, err
	}

	res, err := convert.Run(r, run.Names, opts...)
	if err != nil {
		run, err = s.fail(ctx, run, err)
		return run, nil, err
	}

	run, err = s.complete(ctx, run, res)
	if err != nil {
		return run, nil, err
	}
	return run, res.Frames, nil
}

func (s *Service) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.GetRun(ctx, id)
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.ListRuns(ctx, limit)
}

func (s *Service) start(ctx context.Context, input, output string, names []string) (*Run, error) {
	if len(names) == 0 {
		names = keypoints.DefaultNames
	}

	now := time.Now()
	run := &Run{
		ID:         NewID(),
		InputPath:  input,
		OutputPath: output,
		Names:      names,
		Status:     StatusRunning,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if s.repo != nil {
		if err := s.repo.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	logging.WithRunID(s.logger, run.ID).Info("conversion started",
		"input", logging.SanitizePath(input),
		"names", len(names),
	)
	return run, nil
}

func (s *Service) complete(ctx context.Context, run *Run, res convert.Result) (*Run, error) {
	run.Status = StatusCompleted
	run.FramesTotal = res.Total
	run.FramesWritten = len(res.Frames)
	run.FramesSkipped = res.Skipped
	run.UpdatedAt = time.Now()

	logger := logging.WithRunID(s.logger, run.ID)
	if res.Skipped > 0 {
		logger.Info("skipped frames without body keypoints", "skipped", res.Skipped)
	}
	logger.Info("conversion completed", "frames_total", res.Total, "frames_written", run.FramesWritten)

	if s.repo != nil {
		if err := s.repo.UpdateRun(ctx, run); err != nil {
			return run, fmt.Errorf("failed to record run: %w", err)
		}
	}
	return run, nil
}

func (s *Service) fail(ctx context.Context, run *Run, cause error) (*Run, error) {
	run.Status = StatusFailed
	run.Error = cause.Error()
	run.UpdatedAt = time.Now()

	logging.WithRunID(s.logger, run.ID).Error("conversion failed", "error", cause)

	if s.repo != nil {
		if err := s.repo.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
			s.logger.Warn("failed to record failed run", "run_id", run.ID, "error", err)
		}
	}
	return run, cause
}
