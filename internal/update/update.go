// Package update checks GitHub releases for a newer hntop build.
package update

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-resty/resty/v2"
)

// ReleasesURL is the latest-release endpoint of the hntop repository.
const ReleasesURL = "https://api.github.com/repos/matheuskafuri/hntop/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
}

type ghRelease struct {
	TagName string `json:"tag_name"`
}

// Check asks the releases endpoint for the latest tag and returns it when it is
// newer than currentVersion. Any failure returns nil; the check is advisory.
func Check(ctx context.Context, endpoint, currentVersion string) *Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var release ghRelease
	resp, err := resty.New().R().
		SetContext(ctx).
		SetHeader("Accept", "application/vnd.github+json").
		SetResult(&release).
		Get(endpoint)
	if err != nil {
		lgr.Printf("[DEBUG] release check failed: %v", err)
		return nil
	}
	if resp.IsError() {
		lgr.Printf("[DEBUG] release check returned %s", resp.Status())
		return nil
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	if latest == "" || !newer(latest, strings.TrimPrefix(currentVersion, "v")) {
		return nil
	}
	return &Result{LatestVersion: latest}
}

// newer reports whether dotted version a is greater than b. Development
// builds ("dev" or anything unparsable) are always considered older.
func newer(a, b string) bool {
	av, aok := parseVersion(a)
	bv, bok := parseVersion(b)
	if !aok {
		return false
	}
	if !bok {
		return true
	}
	for i := range av {
		if av[i] != bv[i] {
			return av[i] > bv[i]
		}
	}
	return false
}

func parseVersion(s string) ([3]int, bool) {
	var v [3]int
	s, _, _ = strings.Cut(s, "-")
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return v, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return v, false
		}
		v[i] = n
	}
	return v, true
}
