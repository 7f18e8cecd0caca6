// Package assets interprets the extracted scratch tree of a Unity asset
// package: a flat set of directories named by 32-character hex GUIDs, each
// holding an optional "asset" payload, an "asset.meta" sidecar, and a
// "pathname" entry carrying the asset's original project path.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/packguard/packguard/internal/types"
)

// MaxContentBytes is the ceiling for eagerly reading script content. Scripts
// at or above this size are listed with nil content, never partially read.
const MaxContentBytes = 1 << 20

var guidDir = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

var extTypes = map[string]types.FileType{
	".cs": types.FileScript, ".js": types.FileScript, ".boo": types.FileScript,
	".cginc": types.FileScript, ".shader": types.FileScript, ".hlsl": types.FileScript,
	// interpreter scripts: content is captured so extension rules can apply
	// their keyword heuristic
	".bat": types.FileScript, ".cmd": types.FileScript, ".ps1": types.FileScript,
	".sh": types.FileScript, ".vbs": types.FileScript,

	".dll": types.FileNativeLibrary, ".so": types.FileNativeLibrary,
	".dylib": types.FileNativeLibrary, ".bundle": types.FileNativeLibrary,

	".unity": types.FileAsset, ".prefab": types.FileAsset, ".mat": types.FileAsset,
	".anim": types.FileAsset, ".controller": types.FileAsset, ".asset": types.FileAsset,
	".physicmaterial": types.FileAsset, ".guiskin": types.FileAsset,

	".png": types.FileTexture, ".jpg": types.FileTexture, ".jpeg": types.FileTexture,
	".tga": types.FileTexture, ".psd": types.FileTexture, ".tif": types.FileTexture,
	".exr": types.FileTexture, ".bmp": types.FileTexture,

	".fbx": types.FileModel, ".obj": types.FileModel, ".blend": types.FileModel,
	".dae": types.FileModel, ".3ds": types.FileModel,

	".wav": types.FileAudio, ".mp3": types.FileAudio, ".ogg": types.FileAudio,
	".aif": types.FileAudio, ".aiff": types.FileAudio,

	".meta": types.FileMetadata,
}

// Classify maps a logical path to a FileType by its original extension.
func Classify(logicalPath string) types.FileType {
	ext := strings.ToLower(filepath.Ext(logicalPath))
	if t, ok := extTypes[ext]; ok {
		return t
	}
	return types.FileOther
}

// Resolve walks the scratch tree produced by the extractor and returns the
// normalized file listing. Directories whose names are not 32 hex characters
// are ignored without error. Per-asset read failures degrade to nil content;
// only a failure to read the scratch root itself is fatal.
func Resolve(scratchDir string) ([]types.ExtractedFile, error) {
	entries, err := os.ReadDir(scratchDir)
	if err != nil {
		return nil, fmt.Errorf("read scratch dir: %w", err)
	}

	// directory order is filesystem-dependent; sort for stable finding order
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && guidDir.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var files []types.ExtractedFile
	for _, guid := range names {
		assetPath := filepath.Join(scratchDir, guid, "asset")
		st, err := os.Stat(assetPath)
		if err != nil || st.IsDir() {
			// pathname-only directories still describe a logical file
			if _, perr := os.Stat(filepath.Join(scratchDir, guid, "pathname")); perr != nil {
				continue
			}
			st = nil
		}

		logical := logicalPath(scratchDir, guid)
		f := types.ExtractedFile{
			Path:    logical,
			Type:    Classify(logical),
			AssetID: guid,
		}
		if st != nil {
			f.SizeBytes = uint64(st.Size())
			if f.Type == types.FileScript && st.Size() < MaxContentBytes {
				if b, rerr := os.ReadFile(assetPath); rerr == nil {
					s := string(b)
					f.Content = &s
				} else {
					logrus.WithError(rerr).WithField("asset", guid).Debug("script payload unreadable, listing without content")
				}
			}
		}
		files = append(files, f)
	}
	return files, nil
}

// logicalPath returns the trimmed pathname sidecar content, or a synthetic
// placeholder embedding the GUID so the asset is still reported.
func logicalPath(scratchDir, guid string) string {
	b, err := os.ReadFile(filepath.Join(scratchDir, guid, "pathname"))
	if err == nil {
		// some exporters append a trailing "00" flag line after the path
		line := strings.TrimSpace(strings.SplitN(string(b), "\n", 2)[0])
		if line != "" {
			return line
		}
	}
	return fmt.Sprintf("unknown/%s.asset", guid)
}

// Summarize builds the package-level aggregate for a resolved listing.
func Summarize(archivePath string, files []types.ExtractedFile) types.PackageInfo {
	info := types.PackageInfo{
		FileName:  filepath.Base(archivePath),
		FileCount: len(files),
		Files:     files,
	}
	if st, err := os.Stat(archivePath); err == nil {
		info.FileSize = st.Size()
	}
	for _, f := range files {
		switch f.Type {
		case types.FileScript:
			info.ScriptCount++
		case types.FileNativeLibrary:
			info.NativeLibraryCount++
		case types.FileAsset:
			info.AssetCount++
		}
	}
	return info
}
