package keypoints

import "strconv"

// BodyNames is the Body25 layout, indexed by canonical position.
var BodyNames = []string{
	"nose",
	"neck",
	"rightShoulder",
	"rightElbow",
	"rightWrist",
	"leftShoulder",
	"leftElbow",
	"leftWrist",
	"midHip",
	"rightHip",
	"rightKnee",
	"rightAnkle",
	"leftHip",
	"leftKnee",
	"leftAnkle",
	"rightEye",
	"leftEye",
	"rightEar",
	"leftEar",
	"leftBigToe",
	"leftSmallToe",
	"leftHeel",
	"rightBigToe",
	"rightSmallToe",
	"rightHeel",
}

// DefaultNames is the arm + hips set exported when no names are requested.
var DefaultNames = []string{
	"nose",
	"leftShoulder",
	"rightShoulder",
	"leftElbow",
	"rightElbow",
	"leftWrist",
	"rightWrist",
	"leftHip",
	"rightHip",
}

// faceRegion names a contiguous run of face landmarks. Suffixes count from
// the first index of the run.
type faceRegion struct {
	prefix string
	first  int
	last   int
}

var faceRegions = []faceRegion{
	{"faceJaw", 0, 16},
	{"faceRightBrow", 17, 21},
	{"faceLeftBrow", 22, 26},
	{"faceNoseBridge", 27, 30},
	{"faceNostril", 31, 35},
	{"faceRightEye", 36, 41},
	{"faceLeftEye", 42, 47},
	{"faceOuterLip", 48, 59},
	{"faceInnerLip", 60, 67},
}

// faceGaps are inner-lip positions with no public name.
var faceGaps = map[int]bool{61: true, 64: true}

func faceAliases() [][]string {
	out := make([][]string, FacePointCount)
	for _, reg := range faceRegions {
		for idx := reg.first; idx <= reg.last; idx++ {
			if faceGaps[idx] {
				continue
			}
			out[idx] = []string{reg.prefix + strconv.Itoa(idx-reg.first)}
		}
	}
	out[68] = []string{"faceRightPupil"}
	out[69] = []string{"faceLeftPupil"}
	return out
}

// handJoints holds the per-position aliases of a hand: finger-segment
// naming first, anatomical naming second.
var handJoints = [HandPointCount][]string{
	{"Wrist"},
	{"Thumb1", "ThumbCMC"},
	{"Thumb2", "ThumbMCP"},
	{"Thumb3", "ThumbIP"},
	{"Thumb4", "ThumbTip"},
	{"Index1", "IndexMCP"},
	{"Index2", "IndexPIP"},
	{"Index3", "IndexDIP"},
	{"Index4", "IndexTip"},
	{"Middle1", "MiddleMCP"},
	{"Middle2", "MiddlePIP"},
	{"Middle3", "MiddleDIP"},
	{"Middle4", "MiddleTip"},
	{"Ring1", "RingMCP"},
	{"Ring2", "RingPIP"},
	{"Ring3", "RingDIP"},
	{"Ring4", "RingTip"},
	{"Pinky1", "PinkyMCP"},
	{"Pinky2", "PinkyPIP"},
	{"Pinky3", "PinkyDIP"},
	{"Pinky4", "PinkyTip"},
}

func handAliases(prefix string) [][]string {
	out := make([][]string, HandPointCount)
	for idx, joints := range handJoints {
		names := make([]string, len(joints))
		for i, j := range joints {
			names[i] = prefix + j
		}
		out[idx] = names
	}
	return out
}
