// Package fetcher downloads supplier price lists from remote sources.
// Suppliers publish over plain HTTP or drop files on FTP servers; both land
// here as raw workbook bytes for the engine.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher downloads one remote supplier file.
type Fetcher interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// Fetch downloads a supplier file, dispatching on the URL scheme, and
// returns the whole body. Supplier price lists are small enough to buffer.
func Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: parse url %s", rawURL)
	}

	var f Fetcher
	switch u.Scheme {
	case "http", "https":
		f = NewHTTPFetcher(HTTPOptions{})
	case "ftp":
		f = NewFTPFetcher(FTPOptions{})
	default:
		return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
	}

	rc, err := f.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}
	return data, nil
}

const defaultTimeout = 30 * time.Second
