package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound means the archive path does not resolve to a readable file.
	ErrNotFound = errors.New("archive not found")
	// ErrCorrupt means the archive could not be decompressed or parsed.
	ErrCorrupt = errors.New("archive corrupt")
)

// perEntryLimit bounds a single decompressed entry so a crafted archive
// cannot exhaust disk space through one runaway stream.
const perEntryLimit = 512 << 20

// Extract decompresses the gzip tar package at archivePath into a uniquely
// named scratch directory under tempRoot (os.TempDir when empty) and returns
// that directory. Entries whose normalized path escapes the destination root
// are silently skipped; structurally invalid but non-escaping entries are
// skipped as well rather than aborting the whole extraction. The caller owns
// deletion of the returned directory.
func Extract(archivePath, tempRoot string) (string, error) {
	st, err := os.Stat(archivePath)
	if err != nil || st.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, archivePath)
	}
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, archivePath)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer gz.Close()

	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	scratch := filepath.Join(tempRoot, "packguard-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o700); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	if err := untar(gz, scratch); err != nil {
		// partial trees are useless to the resolver; clean up on failure
		Cleanup(scratch)
		return "", err
	}
	return scratch, nil
}

func untar(r io.Reader, dest string) error {
	tr := tar.NewReader(r)
	sawEntry := false
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if sawEntry {
				// best-effort: keep what already extracted
				logrus.WithError(err).Warn("tar stream truncated, keeping extracted entries")
				break
			}
			return fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		sawEntry = true

		target, ok := safeJoin(dest, hdr.Name)
		if !ok {
			logrus.WithField("entry", hdr.Name).Debug("skipping path-escaping archive entry")
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o700); err != nil {
				logrus.WithError(err).WithField("entry", hdr.Name).Warn("skipping unwritable directory entry")
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, perEntryLimit); err != nil {
				logrus.WithError(err).WithField("entry", hdr.Name).Warn("skipping unreadable archive entry")
			}
		default:
			// symlinks, devices and the like have no place in an asset package
			logrus.WithFields(logrus.Fields{"entry": hdr.Name, "type": hdr.Typeflag}).Debug("skipping non-regular archive entry")
		}
	}
	return nil
}

// safeJoin resolves an archive entry name against dest and reports whether
// the result stays inside dest.
func safeJoin(dest, name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) {
		return "", false
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", false
	}
	target := filepath.Join(dest, clean)
	rel, err := filepath.Rel(dest, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", false
	}
	return target, true
}

// writeEntry copies at most limit bytes to target. A stream that still has
// data past the limit is written truncated, with a warning so oversized
// payloads are never silently half-extracted.
func writeEntry(target string, r io.Reader, limit int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(r, limit))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == limit {
		var extra [1]byte
		if m, _ := r.Read(extra[:]); m > 0 {
			logrus.WithFields(logrus.Fields{"file": target, "limit": limit}).
				Warn("archive entry exceeds size limit, written truncated")
		}
	}
	return err
}

// Cleanup removes a scratch directory produced by Extract. Failures are
// logged and swallowed; a leftover temp dir must never fail a scan.
func Cleanup(scratchDir string) {
	if scratchDir == "" {
		return
	}
	if err := os.RemoveAll(scratchDir); err != nil {
		logrus.WithError(err).WithField("dir", scratchDir).Warn("failed to remove scratch directory")
	}
}
