package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/savantarmorer/sb1-kxlgah-sub002/models"
)

// SnapshotArchiver serializes completed tournaments to JSON and uploads
// them to the object store for long-term history.
type SnapshotArchiver struct {
	uploader FileUploader
	logger   *slog.Logger
}

func NewSnapshotArchiver(uploader FileUploader, logger *slog.Logger) *SnapshotArchiver {
	return &SnapshotArchiver{uploader: uploader, logger: logger}
}

// ArchiveTournament uploads the final bracket under a date-partitioned key.
func (a *SnapshotArchiver) ArchiveTournament(ctx context.Context, snap *models.TournamentSnapshot) error {
	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tournament %d archive: %w", snap.Tournament.ID, err)
	}

	key := fmt.Sprintf("tournaments/%s/%d.json",
		time.Now().UTC().Format("2006/01"), snap.Tournament.ID)

	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to upload tournament %d archive: %w", snap.Tournament.ID, err)
	}

	a.logger.Info("tournament archived",
		slog.Int("tournament_id", snap.Tournament.ID),
		slog.String("key", result.Key),
		slog.String("location", result.Location))
	return nil
}
