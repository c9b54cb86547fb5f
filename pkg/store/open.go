package store

import (
	"context"
	"fmt"

	"github.com/kataras/figma-variables/pkg/exporter"
	"github.com/kataras/figma-variables/pkg/figma"
)

// Remote returns an opener that fetches the file's local variables from the
// Figma API on every call.
func Remote(client *figma.Client, fileKey string) exporter.Opener {
	return func(ctx context.Context) (exporter.Store, error) {
		resp, err := client.GetLocalVariables(ctx, fileKey)
		if err != nil {
			return nil, fmt.Errorf("fetch local variables: %w", err)
		}
		return FromResponse(resp), nil
	}
}

// File returns an opener that re-reads the document at path on every call,
// so edits to the file show up in the next request.
func File(path string) exporter.Opener {
	return func(ctx context.Context) (exporter.Store, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Static returns an opener that always serves s. Snapshots are immutable so
// this does not leak state between requests.
func Static(s *Snapshot) exporter.Opener {
	return func(context.Context) (exporter.Store, error) {
		return s, nil
	}
}
