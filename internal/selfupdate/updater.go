package selfupdate

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrDevBuild            = errors.New("cannot update a development build")
	ErrAlreadyLatest       = errors.New("already running the latest version")
	ErrChecksum            = errors.New("checksum verification failed")
	ErrUnsupportedPlatform = errors.New("no release build for this platform")
)

// checksumsFile is published with every release and lists the sha256 of
// each archive.
const checksumsFile = "checksums.txt"

// maxDownload caps a single release asset.
const maxDownload = 64 << 20

// platforms lists the GOOS/GOARCH pairs memoria publishes archives for.
var platforms = map[string][]string{
	"linux":  {"amd64", "arm64"},
	"darwin": {"amd64", "arm64"},
}

// UpdateInput selects the release to install. An empty TargetVersion means
// the latest release.
type UpdateInput struct {
	CurrentVersion string
	TargetVersion  string
}

// Update downloads, verifies and installs a release over the running binary
// and returns the installed tag. Progress goes to the Checker's logger.
func (c *Checker) Update(ctx context.Context, input *UpdateInput) (string, error) {
	if input.CurrentVersion == "(devel)" || input.CurrentVersion == "" {
		return "", ErrDevBuild
	}

	asset, err := c.archiveName()
	if err != nil {
		return "", err
	}

	tag := input.TargetVersion
	if tag == "" {
		c.log.Info().Str("current", input.CurrentVersion).Msg("checking for latest release")
		result, err := c.Check(ctx, &CheckInput{Version: input.CurrentVersion})
		if err != nil {
			return "", fmt.Errorf("check for updates: %w", err)
		}
		if !result.UpdateAvailable {
			return "", ErrAlreadyLatest
		}
		tag = result.LatestVersion
	}
	log := c.log.With().Str("tag", tag).Str("asset", asset).Logger()

	log.Info().Msg("downloading release")
	archive, err := c.download(ctx, c.assetURL(tag, asset))
	if err != nil {
		return "", fmt.Errorf("download archive: %w", err)
	}

	log.Info().Msg("verifying checksum")
	sums, err := c.download(ctx, c.assetURL(tag, checksumsFile))
	if err != nil {
		return "", fmt.Errorf("download checksums: %w", err)
	}
	want, ok := parseChecksums(sums)[asset]
	if !ok {
		return "", fmt.Errorf("no checksum for %s in %s", asset, checksumsFile)
	}
	if err := verifyChecksum(archive, want); err != nil {
		return "", err
	}

	target, err := c.execPath()
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}
	log.Info().Str("path", target).Msg("installing binary")
	n, err := c.install(archive, target)
	if err != nil {
		return "", fmt.Errorf("install %s: %w", tag, err)
	}
	log.Debug().Int64("bytes", n).Msg("binary replaced")
	return tag, nil
}

// archiveName returns the release asset for the Checker's platform, such
// as memoria_linux_arm64.tar.gz.
func (c *Checker) archiveName() (string, error) {
	if !slices.Contains(platforms[c.goos], c.goarch) {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, c.goos, c.goarch)
	}
	return fmt.Sprintf("%s_%s_%s.tar.gz", c.binary, c.goos, c.goarch), nil
}

func (c *Checker) assetURL(tag, name string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
		strings.TrimRight(c.downloadBaseURL, "/"), c.owner, c.repo, tag, name)
}

func (c *Checker) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownload+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxDownload {
		return nil, fmt.Errorf("%s exceeds %d bytes", url, maxDownload)
	}
	return data, nil
}

// parseChecksums reads sha256sum output. A leading '*' marks binary mode
// and is not part of the file name.
func parseChecksums(data []byte) map[string]string {
	result := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		parts := strings.Fields(line)
		if len(parts) != 2 {
			continue
		}
		result[strings.TrimPrefix(parts[1], "*")] = strings.ToLower(parts[0])
	}
	return result
}

func verifyChecksum(data []byte, expectedHex string) error {
	h := sha256.Sum256(data)
	actual := hex.EncodeToString(h[:])
	if actual != expectedHex {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksum, expectedHex, actual)
	}
	return nil
}

// install finds the Checker's binary in a tar.gz archive, at the root or
// under a versioned directory, and writes it over target keeping target's
// permissions.
func (c *Checker) install(archive []byte, target string) (int64, error) {
	info, err := os.Stat(target)
	if err != nil {
		return 0, fmt.Errorf("stat target: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return 0, fmt.Errorf("open gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return 0, fmt.Errorf("binary %q not found in archive", c.binary)
		}
		if err != nil {
			return 0, fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag == tar.TypeReg && path.Base(hdr.Name) == c.binary {
			return replaceFile(tr, target, info.Mode().Perm())
		}
	}
}

// replaceFile writes r to a temporary file beside target and renames it
// into place. target is untouched unless every byte was written.
func replaceFile(r io.Reader, target string, mode os.FileMode) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+"-update-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return 0, fmt.Errorf("chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, fmt.Errorf("rename: %w", err)
	}
	return n, nil
}
