package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/mindflowai/mindflow/internal/reference"
)

// ResolvedFile is a file path selected for reference creation
type ResolvedFile struct {
	Path   string
	logger *slog.Logger
}

// Type returns the reference type tag produced by this file
func (f ResolvedFile) Type() string {
	return reference.TypeFile
}

// CreateReference reads the file and builds its reference.
// Returns false when the file cannot be read or is not UTF-8.
func (f ResolvedFile) CreateReference() (*reference.Reference, bool) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		f.log().Debug("Could not read file", "path", f.Path, "reason", err)
		return nil, false
	}

	ref, err := reference.NewFile(f.Path, data)
	if err != nil {
		f.log().Debug("Could not convert bytes to utf8", "path", f.Path, "reason", err)
		return nil, false
	}

	return &ref, true
}

// SizeBytes returns the size of the file on disk
func (f ResolvedFile) SizeBytes() (int64, bool) {
	info, err := os.Stat(f.Path)
	if err != nil {
		f.log().Debug("Could not read file", "path", f.Path, "reason", err)
		return 0, false
	}
	return info.Size(), true
}

// TextHash returns the SHA-256 digest of the file content
func (f ResolvedFile) TextHash() (string, bool) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		f.log().Debug("Could not read file", "path", f.Path, "reason", err)
		return "", false
	}
	return reference.Hash(data), true
}

func (f ResolvedFile) log() *slog.Logger {
	if f.logger == nil {
		return slog.Default()
	}
	return f.logger
}

// Options configures a PathResolver
type Options struct {
	// UseGit enables repository-aware listing for directories inside a repository
	UseGit bool
	// Jobs bounds concurrent reference creation; values below 1 use GOMAXPROCS
	Jobs int
}

// PathResolver turns filesystem paths into file references
type PathResolver struct {
	lister RepoLister
	opts   Options
	logger *slog.Logger
}

// NewPathResolver creates a resolver. A nil lister disables repository-aware listing.
func NewPathResolver(lister RepoLister, opts Options, logger *slog.Logger) *PathResolver {
	if opts.Jobs < 1 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PathResolver{
		lister: lister,
		opts:   opts,
		logger: logger,
	}
}

// ShouldResolve reports whether path names an existing file or directory
func (r *PathResolver) ShouldResolve(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir() || info.Mode().IsRegular()
}

// ExtractFiles lists the files path stands for: path itself when it is not
// a directory, otherwise every file below it.
func (r *PathResolver) ExtractFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []string{path}, nil
	}

	if r.opts.UseGit && r.lister != nil {
		files, ok, err := r.lister.Files(path)
		if err != nil {
			return nil, err
		}
		if ok {
			r.logger.Debug("Listed repository files", "path", path, "count", len(files))
			return files, nil
		}
	}

	files, err := walkFiles(path, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", path, err)
	}
	return files, nil
}

// Resolve returns one ResolvedFile per file below path
func (r *PathResolver) Resolve(path string) ([]ResolvedFile, error) {
	files, err := r.ExtractFiles(path)
	if err != nil {
		return nil, err
	}

	resolved := make([]ResolvedFile, 0, len(files))
	for _, file := range files {
		resolved = append(resolved, ResolvedFile{Path: file, logger: r.logger})
	}
	return resolved, nil
}

// References resolves every path and builds references for the readable
// UTF-8 files, in enumeration order. Skipped files are logged, not returned.
func (r *PathResolver) References(ctx context.Context, paths ...string) ([]reference.Reference, error) {
	var files []ResolvedFile
	for _, path := range paths {
		resolved, err := r.Resolve(path)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)
	}

	results := make([]*reference.Reference, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if ref, ok := file.CreateReference(); ok {
				results[i] = ref
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	refs := make([]reference.Reference, 0, len(results))
	for _, ref := range results {
		if ref != nil {
			refs = append(refs, *ref)
		}
	}

	r.logger.Debug("Resolved references",
		"files", len(files),
		"references", len(refs),
		"skipped", len(files)-len(refs))

	return refs, nil
}
