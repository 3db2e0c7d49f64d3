package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/heimdex-pose/internal/config"
	"github.com/heimdex/heimdex-pose/internal/keypoints"
)

func TestParseConvertArgs(t *testing.T) {
	ca, err := parseConvertArgs([]string{"-names", "nose,neck", "-names", "leftHandWrist", "-limit", "3", "-no-history", "in.pose", "out.json"}, keypoints.DefaultNames, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, []string{"nose", "neck", "leftHandWrist"}, ca.names)
	assert.Equal(t, 3, ca.limit)
	assert.True(t, ca.noHistory)
	assert.Equal(t, "in.pose", ca.input)
	assert.Equal(t, "out.json", ca.output)
}

func TestParseConvertArgs_Defaults(t *testing.T) {
	ca, err := parseConvertArgs([]string{"in.pose", "out.json"}, keypoints.DefaultNames, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, keypoints.DefaultNames, ca.names)
	assert.Zero(t, ca.limit)
	assert.False(t, ca.noHistory)
}

func TestParseConvertArgs_Errors(t *testing.T) {
	cases := [][]string{
		{},
		{"in.pose"},
		{"in.pose", "out.json", "extra"},
		{"-limit", "-2", "in.pose", "out.json"},
		{"-bogus", "in.pose", "out.json"},
	}
	for _, args := range cases {
		_, err := parseConvertArgs(args, nil, io.Discard)
		assert.Error(t, err, "args %v", args)
	}
}

func TestRun_Help(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())

	for _, flagName := range []string{"-h", "-help"} {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{flagName}, &stdout, &stderr))

		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "usage: poseconvert")
		assert.Contains(t, stderr.String(), "-names")
		assert.Contains(t, stderr.String(), "-no-history")
	}
}

func TestPrintNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printNames(&buf, keypoints.Default))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# body\nnose\nneck\n"))
	assert.Contains(t, out, "# face\n")
	assert.Contains(t, out, "# left_hand\nleftHandWrist\n")
	assert.Contains(t, out, "rightHandPinkyTip\n")
}

func TestRun_ConvertFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvDefaultNames, "")
	t.Setenv(config.EnvHistory, "")
	t.Setenv(config.EnvLogLevel, "error")

	dir := t.TempDir()
	in := filepath.Join(dir, "take.pose")
	out := filepath.Join(dir, "take.json")
	lines := []string{
		bodyLine(),
		"{'body': [], 'face': [], 'left_hand': [], 'right_hand': []}",
		bodyLine(),
	}
	require.NoError(t, os.WriteFile(in, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-names", "nose", in, out}, &stdout, io.Discard))

	assert.Equal(t, "Skipped 1 frame(s) without body keypoints.\n", stdout.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc []map[string]map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, map[string]float64{"x": 0.5, "y": 0}, doc[0]["keypoints"]["nose"])

	_, err = os.Stat(filepath.Join(dataDir, config.DBFilename))
	assert.NoError(t, err, "history database should be created")
}

func TestRun_ConvertFile_MalformedLeavesNoOutput(t *testing.T) {
	t.Setenv(config.EnvDataDir, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")

	dir := t.TempDir()
	in := filepath.Join(dir, "bad.pose")
	out := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(in, []byte("{'body': [[1, 2, 0.5]]}\n"), 0644))

	var stdout bytes.Buffer
	err := run([]string{"-no-history", in, out}, &stdout, io.Discard)
	require.ErrorIs(t, err, keypoints.ErrMalformedBody)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output should not exist after a failed conversion")
	assert.Empty(t, stdout.String())
}

func bodyLine() string {
	pts := make([]string, keypoints.BodyPointCount)
	for i := range pts {
		pts[i] = fmt.Sprintf("[np.float32(%d.5), np.float32(%d), np.float32(0.8)]", i, i)
	}
	return "{'body': [" + strings.Join(pts, ", ") + "], 'face': [], 'left_hand': [], 'right_hand': []}"
}
