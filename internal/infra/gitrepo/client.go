package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"release_notifier/internal/domain/release"
	"release_notifier/internal/domain/vcs"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 2 * time.Minute

// Client implements vcs.Client on top of go-git.
type Client struct {
	repo    *git.Repository
	remote  string
	auth    transport.AuthMethod
	timeout time.Duration
	logger  logrus.FieldLogger
}

var _ vcs.Client = (*Client)(nil)

// Open opens the repository containing path and returns a client bound to the given remote.
func Open(path, remote string, auth transport.AuthMethod, timeout time.Duration, logger logrus.FieldLogger) (*Client, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return NewClient(repo, remote, auth, timeout, logger), nil
}

func NewClient(repo *git.Repository, remote string, auth transport.AuthMethod, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		repo:    repo,
		remote:  remote,
		auth:    auth,
		timeout: timeout,
		logger:  logger.WithField("component", "gitrepo"),
	}
}

// TokenAuth returns HTTP basic auth for token-based pushes, or nil when no token is set
// (SSH remotes then fall back to the agent).
func TokenAuth(username, token string) transport.AuthMethod {
	if token == "" {
		return nil
	}
	if username == "" {
		// Most Git hosting services accept "token" as the username for token auth
		username = "token"
	}
	return &http.BasicAuth{Username: username, Password: token}
}

func (c *Client) FetchTags(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: c.remote,
		RefSpecs:   []ggitcfg.RefSpec{"+refs/tags/*:refs/tags/*"},
		Tags:       git.AllTags,
		Auth:       c.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch tags from %s: %w", c.remote, err)
	}
	return nil
}

// LatestTag walks history from HEAD, newest commit first, and returns the first tag found.
// When several tags point at that commit the highest version wins.
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	byCommit, err := c.tagsByCommit()
	if err != nil {
		return "", err
	}
	if len(byCommit) == 0 {
		return "", vcs.ErrNoTags
	}

	commits, err := c.repo.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if err != nil {
		return "", fmt.Errorf("failed to walk history: %w", err)
	}
	defer commits.Close()

	var found string
	err = commits.ForEach(func(commit *object.Commit) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if names, ok := byCommit[commit.Hash]; ok {
			found = highestTag(names)
			return storer.ErrStop
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk history: %w", err)
	}
	if found == "" {
		return "", vcs.ErrNoTags
	}
	return found, nil
}

// tagsByCommit maps commit hashes to tag names, peeling annotated tags.
func (c *Client) tagsByCommit() (map[plumbing.Hash][]string, error) {
	iter, err := c.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	out := make(map[plumbing.Hash][]string)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tagObj, err := c.repo.TagObject(target); err == nil {
			commit, err := tagObj.Commit()
			if err != nil {
				c.logger.WithField("tag", ref.Name().Short()).Debug("Tag does not point at a commit, ignoring")
				return nil
			}
			target = commit.Hash
		}
		out[target] = append(out[target], ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}
	return out, nil
}

func highestTag(names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	best := ""
	var bestVersion release.Version
	for _, name := range sorted {
		parsed := release.ParseTag(name)
		if parsed.Kind != release.Parsed {
			continue
		}
		if best == "" || bestVersion.Less(parsed.Version) {
			best, bestVersion = name, parsed.Version
		}
	}
	if best != "" {
		return best
	}
	return sorted[len(sorted)-1]
}

// TagExists checks local refs first and then the remote's advertised refs.
// A remote that cannot be listed is logged and treated as not having the tag.
func (c *Client) TagExists(ctx context.Context, tag string) (bool, error) {
	name := plumbing.NewTagReferenceName(tag)

	_, err := c.repo.Reference(name, false)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, fmt.Errorf("failed to look up tag %s: %w", tag, err)
	}

	remote, err := c.repo.Remote(c.remote)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load remote %s: %w", c.remote, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	refs, err := remote.ListContext(ctx, &git.ListOptions{Auth: c.auth})
	if err != nil {
		c.logger.WithError(err).WithField("tag", tag).Warn("Could not list remote refs, relying on local tags")
		return false, nil
	}
	for _, ref := range refs {
		if ref.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

func (c *Client) CreateTag(_ context.Context, tag string) error {
	head, err := c.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if _, err := c.repo.CreateTag(tag, head.Hash(), nil); err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

func (c *Client) PushTag(ctx context.Context, tag string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ref := plumbing.NewTagReferenceName(tag)
	err := c.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: c.remote,
		RefSpecs:   []ggitcfg.RefSpec{ggitcfg.RefSpec(ref + ":" + ref)},
		Auth:       c.auth,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to push tag %s to %s: %w", tag, c.remote, err)
	}
	return nil
}
