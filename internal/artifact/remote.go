package artifact

import (
	"context"
	"net/http"
	"strings"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-getter"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/singleflight"
)

// RemoteRepository downloads artifacts from a maven style repository URL into a local cache
// directory. It is safe for concurrent use; concurrent requests for one artifact download it once.
type RemoteRepository struct {
	URL    string
	Cache  *LocalRepository
	logger log.Logger

	// We use [xsync.MapOf](https://github.com/puzpuzpuz/xsync?tab=readme-ov-file#map)
	// instead of standard `sync.Map` since it's faster and has generic types.
	resolved *xsync.MapOf[string, string]
	group    singleflight.Group
	client   *http.Client
}

func NewRemoteRepository(l log.Logger, url, cacheDir string) *RemoteRepository {
	return &RemoteRepository{
		URL:      strings.TrimSuffix(url, "/"),
		Cache:    NewLocalRepository(cacheDir),
		logger:   l,
		resolved: xsync.NewMapOf[string, string](),
		client:   cleanhttp.DefaultPooledClient(),
	}
}

func (repo *RemoteRepository) Resolve(ctx context.Context, artifact coords.ArtifactCoords) (string, error) {
	key := artifact.String()

	if path, ok := repo.resolved.Load(key); ok {
		return path, nil
	}

	if path, err := repo.Cache.Resolve(ctx, artifact); err == nil {
		repo.resolved.Store(key, path)
		return path, nil
	}

	path, err, _ := repo.group.Do(key, func() (any, error) {
		return repo.download(ctx, artifact)
	})
	if err != nil {
		return "", err
	}

	repo.resolved.Store(key, path.(string))

	return path.(string), nil
}

func (repo *RemoteRepository) download(ctx context.Context, artifact coords.ArtifactCoords) (string, error) {
	// the archive is cached as is, it is unpacked when laid out
	src := repo.URL + "/" + artifact.RepositoryPath() + "?archive=false"
	dst := repo.Cache.Path(artifact)

	repo.logger.Debugf("Downloading %s from %s", artifact, repo.URL)

	if err := getter.GetFile(dst, src, getter.WithContext(ctx), CopyFiles, repo.withHTTPClient); err != nil {
		return "", errors.New(ResolutionError{Artifact: artifact, Reason: "download from " + repo.URL + " failed", Err: err})
	}

	return dst, nil
}

// withHTTPClient makes the downloads share one pooled connection client. It must follow CopyFiles,
// which replaces the getters of the client.
func (repo *RemoteRepository) withHTTPClient(client *getter.Client) error {
	httpGetter := &getter.HttpGetter{Client: repo.client, Netrc: true}

	client.Getters["http"] = httpGetter
	client.Getters["https"] = httpGetter

	return nil
}
