package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/mahdiyarhamdi/sheetaro/internal/compositor"
	"github.com/mahdiyarhamdi/sheetaro/internal/models"
	"github.com/mahdiyarhamdi/sheetaro/internal/storage"
)

// TemplateService renders composites of gallery templates with customer
// logos. Rendering is CPU-bound, so a semaphore caps the number of jobs
// running at once.
type TemplateService struct {
	comp    *compositor.Compositor
	files   *storage.FileStorage
	workers chan struct{}
}

// NewTemplateService creates the service with the given concurrency cap.
func NewTemplateService(comp *compositor.Compositor, files *storage.FileStorage, workers int) *TemplateService {
	if workers < 1 {
		workers = 1
	}
	return &TemplateService{
		comp:    comp,
		files:   files,
		workers: make(chan struct{}, workers),
	}
}

// RenderComposite places the customer logo into the template placeholder
// and stores the result as a PNG, returning its relative path.
func (s *TemplateService) RenderComposite(
	ctx context.Context,
	ownerID uuid.UUID,
	template *models.DesignTemplate,
	logoPath string,
) (string, error) {
	select {
	case s.workers <- struct{}{}:
		defer func() { <-s.workers }()
	case <-ctx.Done():
		return "", ctx.Err()
	}

	templateData, err := s.readFile(ctx, template.SourcePath)
	if err != nil {
		return "", fmt.Errorf("template service: read template: %w", err)
	}
	logoData, err := s.readFile(ctx, logoPath)
	if err != nil {
		return "", fmt.Errorf("template service: read logo: %w", err)
	}

	img, err := s.comp.ApplyLogo(templateData, logoData, template.Placeholder, template.StretchLogo)
	if err != nil {
		return "", err
	}

	encoded, err := compositor.EncodePNG(img)
	if err != nil {
		return "", fmt.Errorf("template service: encode composite: %w", err)
	}

	name := fmt.Sprintf("composite_%s.png", template.ID)
	path, err := s.files.SaveBytes(ctx, ownerID, storage.KindComposite, name, encoded)
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *TemplateService) readFile(ctx context.Context, relativePath string) ([]byte, error) {
	f, err := s.files.Open(ctx, relativePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
