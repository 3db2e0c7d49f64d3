package keypoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Sizes(t *testing.T) {
	t.Parallel()

	assert.Len(t, Default.NamesFor(SourceBody), BodyPointCount)
	assert.Len(t, Default.NamesFor(SourceFace), FacePointCount-2)
	// Wrist has one alias, the other 20 positions have two.
	assert.Len(t, Default.NamesFor(SourceLeftHand), 41)
	assert.Len(t, Default.NamesFor(SourceRightHand), 41)
	assert.Equal(t, BodyPointCount+FacePointCount-2+82, Default.Len())
}

func TestDefaultRegistry_BodyIndices(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"nose":      0,
		"neck":      1,
		"leftHip":   12,
		"rightHeel": 24,
		"midHip":    8,
	}
	for name, want := range tests {
		loc, ok := Default.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, Location{Source: SourceBody, Index: want}, loc, name)
	}
}

func TestDefaultRegistry_FaceGaps(t *testing.T) {
	t.Parallel()

	for _, name := range Default.NamesFor(SourceFace) {
		loc, _ := Default.Lookup(name)
		assert.NotEqual(t, 61, loc.Index, name)
		assert.NotEqual(t, 64, loc.Index, name)
		assert.Less(t, loc.Index, FacePointCount, name)
	}

	_, ok := Default.Lookup("faceInnerLip1")
	assert.False(t, ok)
	_, ok = Default.Lookup("faceInnerLip4")
	assert.False(t, ok)

	loc, ok := Default.Lookup("faceInnerLip5")
	require.True(t, ok)
	assert.Equal(t, 65, loc.Index)

	loc, ok = Default.Lookup("faceLeftPupil")
	require.True(t, ok)
	assert.Equal(t, 69, loc.Index)
}

func TestDefaultRegistry_HandAliases(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"leftHandThumb1", "leftHandThumbCMC"},
		{"leftHandThumb4", "leftHandThumbTip"},
		{"rightHandIndex2", "rightHandIndexPIP"},
		{"rightHandPinky4", "rightHandPinkyTip"},
	}
	for _, p := range pairs {
		a, ok := Default.Lookup(p[0])
		require.True(t, ok, p[0])
		b, ok := Default.Lookup(p[1])
		require.True(t, ok, p[1])
		assert.Equal(t, a, b)
	}

	loc, _ := Default.Lookup("rightHandWrist")
	assert.Equal(t, Location{Source: SourceRightHand, Index: 0}, loc)
	loc, _ = Default.Lookup("leftHandPinkyTip")
	assert.Equal(t, Location{Source: SourceLeftHand, Index: 20}, loc)
}

func TestNewRegistry_Duplicate(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(
		Table{Source: SourceBody, Aliases: [][]string{{"nose"}}},
		Table{Source: SourceFace, Aliases: [][]string{{"nose"}}},
	)
	require.ErrorIs(t, err, ErrDuplicateKeypoint)
	assert.Contains(t, err.Error(), `"nose"`)
}

func TestNewRegistry_SkipsEmptyPositions(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(Table{Source: SourceFace, Aliases: [][]string{{"a"}, nil, {"c"}}})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, r.Names())
	loc, ok := r.Lookup("c")
	require.True(t, ok)
	assert.Equal(t, 2, loc.Index)
}

func TestValidateNames(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Default.ValidateNames(DefaultNames))
	assert.NoError(t, Default.ValidateNames(nil))

	err := Default.ValidateNames([]string{"nose", "tail"})
	require.ErrorIs(t, err, ErrUnknownKeypoint)
	assert.Contains(t, err.Error(), "tail")
}

func TestNames_ReturnsCopy(t *testing.T) {
	t.Parallel()

	names := Default.Names()
	names[0] = "mutated"
	assert.Equal(t, "nose", Default.Names()[0])
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "body", SourceBody.String())
	assert.Equal(t, "left_hand", SourceLeftHand.String())
	assert.Equal(t, "source(9)", Source(9).String())
}
