package vcs

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Default commit identity when none is configured.
const (
	defaultAuthorName  = "chronicle"
	defaultAuthorEmail = "chronicle@localhost"
)

// Git implements Backend on top of a go-git repository.
//
// Every Commit maps to exactly one git commit on the current branch.
// Historical reads resolve any revision syntax git itself understands
// (full or abbreviated hashes, HEAD, HEAD~2, branch names).
type Git struct {
	repo   *git.Repository
	wt     *git.Worktree
	author string
	email  string
}

// GitOption configures a Git backend.
type GitOption func(*Git)

// WithAuthor sets the commit author identity.
func WithAuthor(name, email string) GitOption {
	return func(g *Git) {
		g.author = name
		g.email = email
	}
}

// Open initializes or opens a plain git repository rooted at dir.
// The directory is created when missing, so pointing the store at a
// fresh path bootstraps an empty repository.
func Open(dir string, opts ...GitOption) (*Git, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return nil, &BackendError{Op: "init", Err: mkErr}
		}
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, &BackendError{Op: "open", Err: err}
	}
	return newGit(repo, opts)
}

// OpenMemory creates a Git backend over an in-memory repository.
// Used by tests and throwaway stores; behavior is identical to Open.
func OpenMemory(opts ...GitOption) (*Git, error) {
	repo, err := git.Init(memory.NewStorage(), memfs.New())
	if err != nil {
		return nil, &BackendError{Op: "init", Err: err}
	}
	return newGit(repo, opts)
}

func newGit(repo *git.Repository, opts []GitOption) (*Git, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, &BackendError{Op: "open", Err: err}
	}

	g := &Git{
		repo:   repo,
		wt:     wt,
		author: defaultAuthorName,
		email:  defaultAuthorEmail,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ReadWorking implements Backend.
func (g *Git) ReadWorking(path string) ([]byte, error) {
	f, err := g.wt.Filesystem.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &TableNotFoundError{Path: path, Err: err}
		}
		return nil, &BackendError{Op: "read", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &BackendError{Op: "read", Err: err}
	}
	return data, nil
}

// ReadAt implements Backend.
func (g *Git) ReadAt(path, revision string) ([]byte, error) {
	hash, err := g.repo.ResolveRevision(plumbing.Revision(revision))
	if err != nil {
		return nil, &RevisionNotFoundError{Revision: revision, Err: err}
	}

	commit, err := g.repo.CommitObject(*hash)
	if err != nil {
		return nil, &RevisionNotFoundError{Revision: revision, Err: err}
	}

	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, &TableNotFoundError{Path: path, Revision: revision, Err: err}
		}
		return nil, &BackendError{Op: "read", Err: err}
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, &BackendError{Op: "read", Err: err}
	}
	return []byte(contents), nil
}

// Commit implements Backend. The new revision exists only once the
// write, stage, and commit steps have all succeeded.
func (g *Git) Commit(path string, data []byte, message string) (string, error) {
	if err := util.WriteFile(g.wt.Filesystem, path, data, 0o644); err != nil {
		return "", &BackendError{Op: "write", Err: err}
	}

	if _, err := g.wt.Add(path); err != nil {
		return "", &BackendError{Op: "stage", Err: err}
	}

	// AllowEmptyCommits: re-writing an identical value is still one
	// mutation and must still append one revision.
	hash, err := g.wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  g.author,
			Email: g.email,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", &BackendError{Op: "commit", Err: err}
	}
	return hash.String(), nil
}

// Head implements Backend.
func (g *Git) Head() (string, error) {
	ref, err := g.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", ErrNoHistory
		}
		return "", &BackendError{Op: "head", Err: err}
	}
	return ref.Hash().String(), nil
}

// Log implements Backend. Returns revisions newest first; an empty
// repository yields an empty slice.
func (g *Git) Log(path string) ([]Revision, error) {
	iter, err := g.repo.Log(&git.LogOptions{FileName: &path})
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, &BackendError{Op: "log", Err: err}
	}
	defer iter.Close()

	var revs []Revision
	err = iter.ForEach(func(c *object.Commit) error {
		rev := Revision{
			ID:      c.Hash.String(),
			Message: c.Message,
			Author:  c.Author.Name,
			Email:   c.Author.Email,
			Time:    c.Author.When,
		}
		if c.NumParents() > 0 {
			rev.Parent = c.ParentHashes[0].String()
		}
		revs = append(revs, rev)
		return nil
	})
	if err != nil {
		return nil, &BackendError{Op: "log", Err: err}
	}
	return revs, nil
}
