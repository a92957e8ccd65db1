// Package selfupdate checks GitHub releases for a newer memoria build and
// replaces the running binary with it.
package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/mod/semver"
)

const (
	defaultOwner           = "abhisek"
	defaultRepo            = "memoria"
	defaultBaseURL         = "https://api.github.com"
	defaultDownloadBaseURL = "https://github.com"
	defaultBinary          = "memoria"
)

// Checker talks to the GitHub releases API.
type Checker struct {
	client          *http.Client
	baseURL         string
	downloadBaseURL string
	owner           string
	repo            string
	binary          string // executable name inside release archives
	goos, goarch    string
	execPath        func() (string, error)
	log             zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.client.Timeout = d }
}

// WithBaseURL points the release API at another host.
func WithBaseURL(url string) Option {
	return func(c *Checker) { c.baseURL = url }
}

// WithDownloadBaseURL points asset downloads at another host.
func WithDownloadBaseURL(url string) Option {
	return func(c *Checker) { c.downloadBaseURL = url }
}

// WithRepository reads releases from owner/repo instead of abhisek/memoria.
func WithRepository(owner, repo string) Option {
	return func(c *Checker) { c.owner, c.repo = owner, repo }
}

// WithBinaryName sets the executable name used for asset names and
// looked up inside release archives.
func WithBinaryName(name string) Option {
	return func(c *Checker) { c.binary = name }
}

// WithLogger sets the logger that receives update progress.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Checker) { c.log = log }
}

func withExecPath(fn func() (string, error)) Option {
	return func(c *Checker) { c.execPath = fn }
}

func withPlatform(goos, goarch string) Option {
	return func(c *Checker) { c.goos, c.goarch = goos, goarch }
}

// NewChecker returns a Checker for the memoria release feed.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		client:          &http.Client{Timeout: 10 * time.Second},
		baseURL:         defaultBaseURL,
		downloadBaseURL: defaultDownloadBaseURL,
		owner:           defaultOwner,
		repo:            defaultRepo,
		binary:          defaultBinary,
		goos:            runtime.GOOS,
		goarch:          runtime.GOARCH,
		execPath:        os.Executable,
		log:             zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type CheckInput struct {
	Version string
}

type CheckResult struct {
	LatestVersion   string
	ReleaseURL      string
	UpdateAvailable bool
}

type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Check fetches the latest release and compares it with input.Version.
// Versions that are not valid semver never report an update.
func (c *Checker) Check(ctx context.Context, input *CheckInput) (*CheckResult, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimRight(c.baseURL, "/"), c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release: HTTP %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	current := canonical(input.Version)
	latest := canonical(rel.TagName)
	c.log.Debug().Str("current", current).Str("latest", latest).Msg("release check")

	return &CheckResult{
		LatestVersion:   rel.TagName,
		ReleaseURL:      rel.HTMLURL,
		UpdateAvailable: semver.IsValid(current) && semver.IsValid(latest) && semver.Compare(latest, current) > 0,
	}, nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
