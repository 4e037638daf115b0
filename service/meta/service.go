// Package meta loads configuration documents from any afs-supported
// location (file, s3, gs, embed, mem) and decodes them into Go structs,
// expanding ${env.KEY} expressions on the way.
package meta

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"
)

// Service loads and decodes meta documents.
type Service struct {
	fs        afs.Service
	baseURL   string
	fsOptions []storage.Option
}

// New creates a meta service. baseURL may be empty, in which case Load
// expects absolute URLs.
func New(fs afs.Service, baseURL string, options ...storage.Option) *Service {
	return &Service{fs: fs, baseURL: baseURL, fsOptions: options}
}

// Load downloads the document at URI (joined with the base URL when
// relative), expands ${env.KEY} expressions and decodes YAML/JSON into
// target.
func (s *Service) Load(ctx context.Context, URI string, target interface{}) error {
	location := URI
	if s.baseURL != "" && url.Scheme(URI, "") == "" && !strings.HasPrefix(URI, "/") {
		location = url.Join(s.baseURL, URI)
	}
	data, err := s.fs.DownloadWithURL(ctx, location, s.fsOptions...)
	if err != nil {
		return fmt.Errorf("failed to load %v: %w", location, err)
	}
	expanded := expandEnvExpr(string(data))
	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml", ".json", "":
		// yaml.v3 decodes JSON documents as well.
		if err = yaml.Unmarshal([]byte(expanded), target); err != nil {
			return fmt.Errorf("failed to decode %v: %w", location, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %v", location)
	}
	return nil
}
