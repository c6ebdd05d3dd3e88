package github

import (
	"fmt"
	"strings"
)

// repoPathParts is the owner/repo pair length.
const repoPathParts = 2

// SplitRepoPath derives the owner and repository name from a stored
// link path such as "/jonesrussell/linkward". Extra path segments
// (tree, blob, issues) are ignored; a path without both segments is an
// error, which the refresher treats as a permanent repo failure.
func SplitRepoPath(path string) (owner, repo string, err error) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "", "", fmt.Errorf("repo path is empty: %q", path)
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) < repoPathParts || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repo path missing owner or name: %q", path)
	}

	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
