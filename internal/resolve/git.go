package resolve

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// RepoLister enumerates the files a version-control system tracks below a directory
type RepoLister interface {
	// Files returns the tracked files below dir, joined onto dir.
	// ok is false when dir does not lie inside a repository.
	Files(dir string) (files []string, ok bool, err error)
}

// GitLister lists files from the git index, matching `git ls-files`
type GitLister struct{}

// NewGitLister creates a lister backed by go-git
func NewGitLister() *GitLister {
	return &GitLister{}
}

// Files implements RepoLister
func (g *GitLister) Files(dir string) ([]string, bool, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(absDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open repository at %s: %w", dir, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no files on disk to resolve
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to open worktree: %w", err)
	}

	idx, err := repo.Storer.Index()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read git index: %w", err)
	}

	rel, err := filepath.Rel(wt.Filesystem.Root(), absDir)
	if err != nil {
		return nil, false, fmt.Errorf("failed to locate %s in repository: %w", dir, err)
	}
	prefix := ""
	if rel != "." {
		prefix = filepath.ToSlash(rel) + "/"
	}

	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		if !strings.HasPrefix(entry.Name, prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(entry.Name, prefix))))
	}

	return files, true, nil
}
