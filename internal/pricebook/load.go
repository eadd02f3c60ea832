package pricebook

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"
)

const readBufferSize = 4096

// Read decodes a document from r.
func Read(r io.Reader) (*Document, error) {
	return Decode(jx.Decode(r, readBufferSize))
}

// Open reads the document at path. Files ending in .gz are gunzipped.
func Open(ctx context.Context, path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := Read(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return doc, nil
}

// ReadFiles reads all paths concurrently. Documents are returned in argument
// order.
func ReadFiles(ctx context.Context, paths ...string) ([]*Document, error) {
	docs := make([]*Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			doc, err := Open(ctx, path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadFiles reads all paths concurrently and merges them in argument order.
func LoadFiles(ctx context.Context, paths ...string) (*Book, error) {
	docs, err := ReadFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	return Build(docs...)
}
