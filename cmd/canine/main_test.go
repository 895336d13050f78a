package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/canine.report/internal/config"
	"github.com/banshee-data/canine.report/internal/db"
	"github.com/banshee-data/canine.report/internal/testutil"
	"github.com/banshee-data/canine.report/internal/version"
)

// clearSecrets keeps collaborator keys from the developer's environment out
// of the test run.
func clearSecrets(t *testing.T) {
	t.Setenv(config.EnvLLMKey, "")
	t.Setenv(config.EnvTTSKey, "")
	t.Setenv(config.EnvSearchKey, "")
}

func writeExport(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	export := testutil.PoseExport(testutil.TailRow(40, 0), testutil.TailRow(0, 40), testutil.TailRow(40, 0))
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))
	return path
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Equal(t, version.Current().String()+"\n", out.String())
}

func TestRun_Migrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "canine.db")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"migrate", "-db", dbPath, "up"}, &out))

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"migrate", "-db", dbPath, "status"}, &out))
	assert.Contains(t, out.String(), "Current version: 2")

	assert.Error(t, run(context.Background(), []string{"migrate", "-db", dbPath, "sideways"}, &out))
}

func TestRun_Analyze(t *testing.T) {
	testutil.MuteLogs(t)
	clearSecrets(t)
	dir := t.TempDir()
	a := writeExport(t, dir, "rex.jsonl")
	b := writeExport(t, dir, "fido.jsonl")
	dbPath := filepath.Join(dir, "canine.db")
	outDir := filepath.Join(dir, "results")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"analyze",
		"-db", dbPath,
		"-out", outDir,
		"-env", filepath.Join(dir, "missing.env"),
		a, b,
	}, &out)
	require.NoError(t, err)

	var results []struct {
		SessionID     string `json:"session_id"`
		VideoFilename string `json:"video_filename"`
		OutputDir     string `json:"output_dir"`
		DoctorSummary string `json:"doctor_summary"`
		Profile       struct {
			Tail string `json:"tail"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "rex.jsonl", results[0].VideoFilename)
	assert.Equal(t, "fido.jsonl", results[1].VideoFilename)
	for _, r := range results {
		assert.Equal(t, "Wagging", r.Profile.Tail)
		assert.Equal(t, filepath.Join(outDir, r.SessionID), r.OutputDir)
		assert.NotEmpty(t, r.DoctorSummary)
	}

	store, err := db.OpenDB(dbPath)
	require.NoError(t, err)
	defer store.Close()
	sessions, err := store.ListSessions()
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestRun_AnalyzeWithConfig(t *testing.T) {
	testutil.MuteLogs(t)
	clearSecrets(t)
	dir := t.TempDir()
	export := writeExport(t, dir, "walk.jsonl")
	cfgPath := filepath.Join(dir, "analysis.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("max_frames: 2\noutput_dir: "+filepath.Join(dir, "out")+"\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"analyze", "-config", cfgPath, "-env", "", export}, &out))

	var results []struct {
		Report struct {
			Frames int `json:"frames"`
		} `json:"emotional_report"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, 2, results[0].Report.Frames)
}

func TestRun_AnalyzeErrors(t *testing.T) {
	testutil.MuteLogs(t)
	clearSecrets(t)
	dir := t.TempDir()
	ctx := context.Background()
	var out bytes.Buffer

	assert.ErrorContains(t, run(ctx, []string{"analyze"}, &out), "at least one pose export")
	assert.Error(t, run(ctx, []string{"analyze", filepath.Join(dir, "nope.jsonl")}, &out))
	assert.ErrorContains(t, run(ctx, []string{"analyze", "-landmarks", "tail_start,fin", writeExport(t, dir, "x.jsonl")}, &out), "fin")
	assert.Error(t, run(ctx, []string{"analyze", "-config", filepath.Join(dir, "cfg.toml"), writeExport(t, dir, "y.jsonl")}, &out))
}

func TestRun_ServeRequiresListen(t *testing.T) {
	clearSecrets(t)
	var out bytes.Buffer
	assert.ErrorContains(t, run(context.Background(), []string{"-listen", ""}, &out), "listen address")
}
