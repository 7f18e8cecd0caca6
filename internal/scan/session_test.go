package scan

import (
	"archive/tar"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packguard/packguard/internal/progress"
	"github.com/packguard/packguard/internal/types"
)

// buildPackage writes a unitypackage-shaped gzip tar: one GUID directory per
// asset with pathname and asset entries.
func buildPackage(t *testing.T, path string, assets map[string]struct {
	guid    string
	payload string
}) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	write := func(name, data string) {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name, Mode: 0o644, Size: int64(len(data)), Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(data))
		require.NoError(t, err)
	}

	paths := make([]string, 0, len(assets))
	for p := range assets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, logical := range paths {
		a := assets[logical]
		write(a.guid+"/pathname", logical+"\n")
		write(a.guid+"/asset", a.payload)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
}

type pkgAsset = struct {
	guid    string
	payload string
}

func TestRun_ScenarioNetworkScriptAndNativeLibrary(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "net.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/Scripts/Downloader.cs": {
			guid:    "11111111111111111111111111111111",
			payload: "var req = UnityWebRequest.Get(\"https://x\");\n",
		},
		"Assets/Plugins/native.dll": {
			guid:    "22222222222222222222222222222222",
			payload: "MZ\x90\x00",
		},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir})
	require.NoError(t, err)

	require.Equal(t, 2, res.Summary.Total)
	assert.Equal(t, 2, res.Summary.Warning)
	assert.Equal(t, 0, res.Summary.Critical)

	byCategory := map[string]types.Finding{}
	for _, f := range res.Findings {
		byCategory[f.Category] = f
	}
	net, ok := byCategory["network"]
	require.True(t, ok)
	assert.Equal(t, types.SevWarning, net.Severity)
	assert.Equal(t, "Assets/Scripts/Downloader.cs", net.Path)
	assert.Equal(t, 1, net.Line)

	lib, ok := byCategory["nativeLibrary"]
	require.True(t, ok)
	assert.Equal(t, types.SevWarning, lib.Severity)
	assert.Equal(t, types.RiskHigh, lib.RiskLevel)
	assert.Equal(t, "Assets/Plugins/native.dll", lib.Path)
}

func TestRun_ScenarioProcessStart(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "proc.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/Editor/Installer.cs": {
			guid:    "33333333333333333333333333333333",
			payload: "Process.Start(\"cmd.exe\");\n",
		},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir})
	require.NoError(t, err)

	require.Equal(t, 1, res.Summary.Total)
	assert.Equal(t, 1, res.Summary.Critical)
	assert.Equal(t, "process", res.Findings[0].Category)
	assert.Equal(t, types.SevCritical, res.Findings[0].Severity)
}

func TestRun_ScenarioNoValidAssets(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "empty.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/whatever.cs": {guid: "not-a-guid-dir", payload: "Process.Start(x);"},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Package.FileCount)
	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Summary.Total)
}

func TestRun_ProgressStagesEmitted(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "p.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/A.cs": {guid: "44444444444444444444444444444444", payload: "class A {}\n"},
	})

	var events []progress.Event
	_, err := Run(Options{
		ArchivePath: pkg,
		TempRoot:    dir,
		Progress:    progress.Func(func(e progress.Event) { events = append(events, e) }),
	})
	require.NoError(t, err)

	seen := map[progress.Stage]bool{}
	for _, e := range events {
		seen[e.Stage] = true
	}
	for _, stage := range []progress.Stage{
		progress.StageExtracting, progress.StageAnalyzing,
		progress.StageScanning, progress.StageCompleted,
	} {
		assert.True(t, seen[stage], string(stage))
	}
	last := events[len(events)-1]
	assert.Equal(t, progress.StageCompleted, last.Stage)
	assert.Equal(t, 100, last.Progress)
}

func TestRun_ScratchCleanedUpByDefault(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "c.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/A.cs": {guid: "55555555555555555555555555555555", payload: "class A {}\n"},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir})
	require.NoError(t, err)
	assert.Empty(t, res.ScratchDir)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, e.IsDir(), "scratch dir %s left behind", e.Name())
	}
}

func TestRun_KeepScratch(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "k.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/A.cs": {guid: "66666666666666666666666666666666", payload: "class A {}\n"},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir, KeepScratch: true})
	require.NoError(t, err)
	require.NotEmpty(t, res.ScratchDir)

	st, err := os.Stat(res.ScratchDir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}

func TestRun_ExcludeGlob(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "g.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/Vendor/Ads.cs": {
			guid:    "77777777777777777777777777777777",
			payload: "var c = new WebClient();\n",
		},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir, Exclude: "Assets/Vendor/**"})
	require.NoError(t, err)
	assert.Empty(t, res.Findings)
	assert.Equal(t, 0, res.Package.FileCount)
}

func TestRun_EveryBundledPreset(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "presets.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/Scripts/Fetch.cs": {
			guid:    "99999999999999999999999999999999",
			payload: "var req = UnityWebRequest.Get(u);\n",
		},
		"Assets/Plugins/bridge.dll": {
			guid:    "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			payload: "MZ\x90\x00",
		},
	})

	// one preset name configures both rule documents, so every bundled
	// name has to resolve in both
	for _, preset := range []string{"all", "strict", "standard", "minimal", "nativeOnly"} {
		res, err := Run(Options{ArchivePath: pkg, TempRoot: dir, Preset: preset})
		require.NoError(t, err, preset)
		assert.NotZero(t, res.Summary.Total, preset)
	}
}

func TestRun_UnknownPresetFailsBeforeExtraction(t *testing.T) {
	_, err := Run(Options{ArchivePath: "does-not-matter", Preset: "no-such-preset"})
	require.Error(t, err)
}

func TestRun_ResultValidAfterScratchDeleted(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "v.unitypackage")
	buildPackage(t, pkg, map[string]pkgAsset{
		"Assets/Run.cs": {
			guid:    "88888888888888888888888888888888",
			payload: "Process.Start(p);\n",
		},
	})

	res, err := Run(Options{ArchivePath: pkg, TempRoot: dir})
	require.NoError(t, err)

	// scratch is already gone; the result must still be fully usable
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "Process.Start(p);", res.Findings[0].Context)
	require.Len(t, res.Package.Files, 1)
	assert.Equal(t, "Assets/Run.cs", res.Package.Files[0].Path)
}
