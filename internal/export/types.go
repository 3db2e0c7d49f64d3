package export

import "github.com/heimdex/heimdex-pose/internal/keypoints"

// Frame is one element of a pose_frames document.
type Frame struct {
	Keypoints keypoints.Keypoints `json:"keypoints"`
}
