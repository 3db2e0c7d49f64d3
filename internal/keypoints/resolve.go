package keypoints

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBody   = errors.New("malformed body landmarks")
	ErrMalformedFace   = errors.New("malformed face landmarks")
	ErrMalformedHand   = errors.New("malformed hand landmarks")
	ErrUnknownKeypoint = errors.New("unknown keypoint")
)

// Frame is one decoded pose record. Each landmark is an (x, y, confidence)
// triple; a nil or empty slice means the array is missing from the record.
type Frame struct {
	Body      [][]float64 `json:"body,omitempty"`
	Face      [][]float64 `json:"face,omitempty"`
	LeftHand  [][]float64 `json:"left_hand,omitempty"`
	RightHand [][]float64 `json:"right_hand,omitempty"`
}

// Point is a resolved 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Keypoints maps requested names to their coordinates for one frame.
type Keypoints map[string]Point

// Resolve extracts the requested names from frame using the default registry.
func Resolve(frame Frame, names []string) (Keypoints, bool, error) {
	return Default.Resolve(frame, names)
}

// Resolve extracts the requested names from frame. It returns ok == false
// with a nil error when the frame carries no body landmarks and must be
// skipped. Face and hand names are omitted when their array is empty.
func (r *Registry) Resolve(frame Frame, names []string) (Keypoints, bool, error) {
	if len(frame.Body) == 0 {
		return nil, false, nil
	}
	if len(frame.Body) != BodyPointCount {
		return nil, false, fmt.Errorf("%w: expected %d body points, got %d",
			ErrMalformedBody, BodyPointCount, len(frame.Body))
	}
	if len(frame.Face) > 0 && len(frame.Face) < FacePointCount {
		return nil, false, fmt.Errorf("%w: expected at least %d face points, got %d",
			ErrMalformedFace, FacePointCount, len(frame.Face))
	}

	out := make(Keypoints, len(names))
	for _, name := range names {
		loc, ok := r.locations[name]
		if !ok {
			return nil, false, fmt.Errorf("%w: %q", ErrUnknownKeypoint, name)
		}

		points, malformed := frame.landmarks(loc.Source)
		if len(points) == 0 {
			continue
		}
		if loc.Index >= len(points) {
			return nil, false, fmt.Errorf("%w: %q needs %s[%d], array has %d points",
				malformed, name, loc.Source, loc.Index, len(points))
		}

		p, err := toPoint(points[loc.Index])
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s[%d]: %v", malformed, loc.Source, loc.Index, err)
		}
		out[name] = p
	}
	return out, true, nil
}

func (f Frame) landmarks(src Source) ([][]float64, error) {
	switch src {
	case SourceBody:
		return f.Body, ErrMalformedBody
	case SourceFace:
		return f.Face, ErrMalformedFace
	case SourceLeftHand:
		return f.LeftHand, ErrMalformedHand
	case SourceRightHand:
		return f.RightHand, ErrMalformedHand
	default:
		return nil, fmt.Errorf("unsupported source %s", src)
	}
}

func toPoint(v []float64) (Point, error) {
	if len(v) < 2 {
		return Point{}, fmt.Errorf("expected at least 2 components, got %d", len(v))
	}
	return Point{X: v[0], Y: v[1]}, nil
}
