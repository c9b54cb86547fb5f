package figmavariables

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kataras/figma-variables/pkg/exporter"
	"github.com/kataras/figma-variables/pkg/figma"
	"github.com/kataras/figma-variables/pkg/formatter"
	"github.com/kataras/figma-variables/pkg/store"
)

// ErrNoSource is returned when neither a Figma URL nor a document path is set.
var ErrNoSource = errors.New("either a Figma file URL or a document path is required")

// Options configures the export.
type Options struct {
	AccessToken  string
	FileURL      string   // Figma file URL
	BaseURL      string   // Figma API root, empty = https://api.figma.com/v1
	DocumentPath string   // local .json/.yaml document, used instead of FileURL
	Collections  []string // collection ids or names, empty = all
	Format       string   // "text", "markdown", "json"
	Logger       Logger   // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result contains the export output.
type Result struct {
	Bundles  []exporter.Bundle
	FileName string // Figma file name or document base name
	Output   string // bundles rendered in Options.Format
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

// Source resolves the options into a store opener and a display name for the
// file. Remote sources fetch a fresh snapshot each time the opener is called.
func (o *Options) Source(ctx context.Context) (exporter.Opener, string, error) {
	if o.DocumentPath != "" {
		o.logInfo("Using local document %s", o.DocumentPath)
		name := strings.TrimSuffix(filepath.Base(o.DocumentPath), filepath.Ext(o.DocumentPath))
		return store.File(o.DocumentPath), name, nil
	}

	if o.FileURL == "" {
		return nil, "", ErrNoSource
	}
	if o.AccessToken == "" {
		return nil, "", errors.New("an access token is required to read from the Figma API")
	}

	o.logInfo("Extracting file key from URL...")
	fileKey, err := figma.ExtractFileKey(o.FileURL)
	if err != nil {
		return nil, "", fmt.Errorf("extract file key: %w", err)
	}
	o.logInfo("File key: %s", fileKey)

	var clientOpts []figma.Option
	if o.BaseURL != "" {
		clientOpts = append(clientOpts, figma.WithBaseURL(o.BaseURL))
	}
	client := figma.NewClient(o.AccessToken, clientOpts...)

	fileName := fileKey
	if fileResp, err := client.GetFile(ctx, fileKey); err != nil {
		o.logWarn("Could not fetch file metadata, using file key as name: %v", err)
	} else {
		fileName = fileResp.Name
		o.logInfo("File: %s", fileName)
	}

	return store.Remote(client, fileKey), fileName, nil
}

// ListCollections returns the id and name of every collection in the source.
func ListCollections(ctx context.Context, opts Options) ([]exporter.CollectionRef, error) {
	open, _, err := opts.Source(ctx)
	if err != nil {
		return nil, err
	}

	opts.logInfo("Fetching variable collections...")
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}

	return exporter.New(s).ListCollections(ctx)
}

// Run exports the selected collections and renders them.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Format == "" {
		opts.Format = formatter.FormatText
	}

	open, fileName, err := opts.Source(ctx)
	if err != nil {
		return nil, err
	}

	opts.logInfo("Fetching variables...")
	s, err := open(ctx)
	if err != nil {
		return nil, err
	}

	exp := exporter.New(s)
	refs, err := exp.ListCollections(ctx)
	if err != nil {
		return nil, err
	}
	opts.logInfo("Found %d collection(s)", len(refs))

	selected := SelectCollections(refs, opts.Collections, opts.logWarn)
	if len(selected) == 0 {
		return nil, errors.New("no collections selected")
	}

	opts.logInfo("Exporting %d collection(s)...", len(selected))
	bundles, err := exp.ExportSelected(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	opts.logInfo("Formatting %d bundle(s) as %s...", len(bundles), opts.Format)
	output, err := formatter.Render(opts.Format, bundles, fileName)
	if err != nil {
		return nil, err
	}

	return &Result{
		Bundles:  bundles,
		FileName: fileName,
		Output:   output,
	}, nil
}

// SelectCollections maps the wanted entries (ids or names) onto collection
// ids. An empty wanted list selects every collection. Entries matching no
// collection are reported through warn and skipped.
func SelectCollections(refs []exporter.CollectionRef, wanted []string, warn func(string, ...any)) []string {
	if len(wanted) == 0 {
		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}
		return ids
	}

	var ids []string
	seen := make(map[string]bool)
	for _, w := range wanted {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}

		matched := false
		for _, ref := range refs {
			if ref.ID == w || ref.Name == w {
				matched = true
				if !seen[ref.ID] {
					seen[ref.ID] = true
					ids = append(ids, ref.ID)
				}
			}
		}

		if !matched && warn != nil {
			warn("No collection matches %q", w)
		}
	}

	return ids
}
