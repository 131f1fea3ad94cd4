package services

import (
	"context"
	"fmt"
	"log"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
)

// QRRenderer renders data as a PNG. *qrcode.Client and
// *qrcode.LocalRenderer implement it.
type QRRenderer interface {
	Available() bool
	Render(ctx context.Context, data string, size int) ([]byte, error)
}

type TableQRCode struct {
	Table *models.Table `json:"table"`
	URL   string        `json:"url"`
	PNG   []byte        `json:"png"`
}

type QRService interface {
	TableURL(venue *models.Venue, table *models.Table) string
	TableQRCode(ctx context.Context, venue *models.Venue, table *models.Table) []byte
	VenueQRCodes(ctx context.Context, scope repository.Scope, venueID uint) ([]TableQRCode, bool, error)
}

type qrService struct {
	baseURL        string
	renderer       QRRenderer
	catalogService CatalogService
}

func NewQRService(baseURL string, renderer QRRenderer, catalogService CatalogService) QRService {
	return &qrService{
		baseURL:        baseURL,
		renderer:       renderer,
		catalogService: catalogService,
	}
}

func (s *qrService) TableURL(venue *models.Venue, table *models.Table) string {
	return fmt.Sprintf("%s/%s/table/%s/", s.baseURL, venue.Slug, table.Number)
}

// TableQRCode returns nil when the renderer is missing or fails.
func (s *qrService) TableQRCode(ctx context.Context, venue *models.Venue, table *models.Table) []byte {
	if s.renderer == nil || !s.renderer.Available() {
		return nil
	}
	png, err := s.renderer.Render(ctx, s.TableURL(venue, table), 0)
	if err != nil {
		log.Printf("QR code generation failed for %s table %s: %v", venue.Slug, table.Number, err)
		return nil
	}
	return png
}

// VenueQRCodes lists every active table with its URL and code image. The
// bool result reports whether every image could be rendered.
func (s *qrService) VenueQRCodes(ctx context.Context, scope repository.Scope, venueID uint) ([]TableQRCode, bool, error) {
	venue, err := s.catalogService.GetVenue(scope, venueID)
	if err != nil {
		return nil, false, err
	}
	tables, err := s.catalogService.ListTables(scope, venue.ID, true)
	if err != nil {
		return nil, false, err
	}

	available := s.renderer != nil && s.renderer.Available()
	codes := make([]TableQRCode, 0, len(tables))
	for i := range tables {
		table := &tables[i]
		code := TableQRCode{Table: table, URL: s.TableURL(venue, table)}
		if available {
			code.PNG = s.TableQRCode(ctx, venue, table)
			if code.PNG == nil {
				available = false
			}
		}
		codes = append(codes, code)
	}
	return codes, available, nil
}
