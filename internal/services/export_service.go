package services

import (
	"context"
	"io"
	"time"

	"reseller_hub/internal/gateway"
	"reseller_hub/internal/report"
)

type ExportService interface {
	// Export writes a CSV snapshot of rel and returns its file name. An
	// empty relation yields report.ErrNoData and writes nothing.
	Export(ctx context.Context, rel gateway.Relation, now time.Time, w io.Writer) (string, error)
}

type exportService struct {
	gw *gateway.Gateway
}

func NewExportService(gw *gateway.Gateway) ExportService {
	return &exportService{gw: gw}
}

func (s *exportService) Export(ctx context.Context, rel gateway.Relation, now time.Time, w io.Writer) (string, error) {
	rows, err := s.gw.Select(ctx, rel, nil, gateway.OrderBy{Column: rel.PrimaryKey()})
	if err != nil {
		return "", err
	}
	if err := report.WriteSnapshot(w, rows); err != nil {
		return "", err
	}
	return report.SnapshotFileName(rel, now), nil
}
