package seed

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"filehub/internal/domain"
	"filehub/internal/domain/models/catalog"
	catalogSvc "filehub/internal/domain/services/catalog"
	sharingSvc "filehub/internal/domain/services/sharing"

	"gopkg.in/yaml.v3"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture describes a catalog to create: per-user trees and grants between them.
type Fixture struct {
	Users  []User  `yaml:"users"`
	Shares []Share `yaml:"shares"`
}

// User owns a tree of folders and files
type User struct {
	ID   string `yaml:"id"`
	Tree []Node `yaml:"tree"`
}

// Node is either a folder (with children) or a file (with inline content)
type Node struct {
	Folder   string `yaml:"folder,omitempty"`
	File     string `yaml:"file,omitempty"`
	Content  string `yaml:"content,omitempty"`
	Children []Node `yaml:"children,omitempty"`
}

// Share grants With access to the item at Path in Owner's tree
type Share struct {
	Owner string `yaml:"owner"`
	Path  string `yaml:"path"`
	With  string `yaml:"with"`
}

// Result counts what Apply created. Items that already existed are skipped.
type Result struct {
	Folders int
	Files   int
	Shares  int
	Skipped int
}

// LoadFixture reads an embedded fixture by name (without extension)
func LoadFixture(name string) (*Fixture, error) {
	filename := fmt.Sprintf("fixtures/%s.yaml", name)
	data, err := fixtureFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes and checks a fixture document
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}
	for _, u := range f.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("fixture user without id: %w", domain.ErrValidation)
		}
		if err := checkNodes(u.Tree); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.ID, err)
		}
	}
	return &f, nil
}

func checkNodes(nodes []Node) error {
	for _, n := range nodes {
		switch {
		case n.Folder != "" && n.File != "":
			return fmt.Errorf("node %q is both folder and file: %w", n.Folder, domain.ErrValidation)
		case n.Folder == "" && n.File == "":
			return fmt.Errorf("node without folder or file name: %w", domain.ErrValidation)
		case n.File != "" && len(n.Children) > 0:
			return fmt.Errorf("file %q cannot have children: %w", n.File, domain.ErrValidation)
		}
		if err := checkNodes(n.Children); err != nil {
			return err
		}
	}
	return nil
}

// Seeder applies fixtures through the services, so every catalog rule holds
// for seeded data exactly as for API traffic.
type Seeder struct {
	catalog catalogSvc.CatalogService
	ledger  sharingSvc.Ledger
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(catalog catalogSvc.CatalogService, ledger sharingSvc.Ledger, logger *slog.Logger) *Seeder {
	return &Seeder{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
	}
}

// Apply creates the fixture. Running it twice creates nothing new:
// existing folders are reused and existing files are left alone.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Result, error) {
	res := &Result{}
	paths := make(map[string]map[string]catalog.ItemRef, len(f.Users))

	for _, u := range f.Users {
		paths[u.ID] = make(map[string]catalog.ItemRef)
		if err := s.applyNodes(ctx, u.ID, nil, "", u.Tree, paths[u.ID], res); err != nil {
			return res, fmt.Errorf("user %s: %w", u.ID, err)
		}
	}

	for _, sh := range f.Shares {
		ref, ok := paths[sh.Owner][strings.Trim(sh.Path, "/")]
		if !ok {
			return res, fmt.Errorf("share %s:%s: %w", sh.Owner, sh.Path, domain.ErrNotFound)
		}
		if _, err := s.ledger.Share(ctx, sh.Owner, ref, sh.With); err != nil {
			return res, fmt.Errorf("share %s:%s with %s: %w", sh.Owner, sh.Path, sh.With, err)
		}
		res.Shares++
	}

	s.logger.Info("seed applied",
		"folders", res.Folders,
		"files", res.Files,
		"shares", res.Shares,
		"skipped", res.Skipped,
	)
	return res, nil
}

func (s *Seeder) applyNodes(ctx context.Context, owner string, parentID *int64, prefix string, nodes []Node, paths map[string]catalog.ItemRef, res *Result) error {
	for _, n := range nodes {
		if n.File != "" {
			ref, err := s.applyFile(ctx, owner, parentID, n, res)
			if err != nil {
				return err
			}
			paths[prefix+n.File] = ref
			continue
		}

		folder, err := s.applyFolder(ctx, owner, parentID, n.Folder, res)
		if err != nil {
			return err
		}
		path := prefix + n.Folder
		paths[path] = folder.Ref()

		if err := s.applyNodes(ctx, owner, &folder.ID, path+"/", n.Children, paths, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) applyFolder(ctx context.Context, owner string, parentID *int64, name string, res *Result) (*catalog.Folder, error) {
	folder, err := s.catalog.CreateFolder(ctx, &catalogSvc.CreateFolderRequest{
		OwnerID:  owner,
		Name:     name,
		ParentID: parentID,
	})
	if err == nil {
		res.Folders++
		return folder, nil
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) && conflict.ResourceType == "folder" {
		res.Skipped++
		return s.catalog.GetFolder(ctx, owner, conflict.ResourceID)
	}
	return nil, fmt.Errorf("folder %q: %w", name, err)
}

func (s *Seeder) applyFile(ctx context.Context, owner string, folderID *int64, n Node, res *Result) (catalog.ItemRef, error) {
	file, err := s.catalog.UploadFile(ctx, &catalogSvc.UploadFileRequest{
		OwnerID:  owner,
		Name:     n.File,
		FolderID: folderID,
		Content:  strings.NewReader(n.Content),
	})
	if err == nil {
		res.Files++
		return file.Ref(), nil
	}

	var conflict *domain.ConflictError
	if errors.As(err, &conflict) && conflict.ResourceType == "file" {
		res.Skipped++
		return catalog.ItemRef{Type: catalog.ItemTypeFile, ID: conflict.ResourceID}, nil
	}
	return catalog.ItemRef{}, fmt.Errorf("file %q: %w", n.File, err)
}
