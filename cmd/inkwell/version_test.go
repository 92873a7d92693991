package main

import (
	"bytes"
	"context"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/require"
)

func stubBuild(t *testing.T, v, c, d string, info *debug.BuildInfo) {
	t.Helper()
	prevVersion, prevCommit, prevDate, prevRead := version, commit, date, readBuildInfo
	t.Cleanup(func() {
		version, commit, date, readBuildInfo = prevVersion, prevCommit, prevDate, prevRead
	})
	version, commit, date = v, c, d
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestVersionCommandPrefersLinkerValues(t *testing.T) {
	stubBuild(t, "1.2.3", "abcdef1", "2026-10-03", &debug.BuildInfo{
		Main:     debug.Module{Version: "v9.9.9"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "ffffff"}},
	})

	out, err := executeCommand(t, newAppContext(), context.Background(), "version")
	require.NoError(t, err)
	require.Contains(t, out, "Inkwell 1.2.3")
	require.Contains(t, out, "commit: abcdef1")
	require.Contains(t, out, "built: 2026-10-03")
	require.Contains(t, out, "go: "+runtime.Version())
}

func TestVersionFallsBackToBuildInfo(t *testing.T) {
	stubBuild(t, "dev", "none", "unknown", &debug.BuildInfo{
		Main: debug.Module{Version: "v0.4.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123abc"},
			{Key: "vcs.time", Value: "2026-09-30T10:00:00Z"},
		},
	})

	var buf bytes.Buffer
	printVersion(&buf)
	require.Contains(t, buf.String(), "Inkwell v0.4.0")
	require.Contains(t, buf.String(), "commit: 0123abc")
	require.Contains(t, buf.String(), "built: 2026-09-30T10:00:00Z")
}

func TestVersionWithoutBuildInfo(t *testing.T) {
	stubBuild(t, "dev", "none", "unknown", nil)

	var buf bytes.Buffer
	printVersion(&buf)
	require.Contains(t, buf.String(), "Inkwell dev\ncommit: none\nbuilt: unknown\n")
}
