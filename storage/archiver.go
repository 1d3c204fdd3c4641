package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/Dosada05/tournament-engine/models"
)

// ResultsDocument is the JSON written when a tournament completes.
type ResultsDocument struct {
	Tournament *models.Tournament          `json:"tournament"`
	Standings  []models.TournamentStanding `json:"standings"`
	Podium     models.Podium               `json:"podium"`
	Matches    []*models.Match             `json:"matches"`
	ArchivedAt time.Time                   `json:"archivedAt"`
}

// ResultsArchiver stores the final results of a tournament outside the database.
type ResultsArchiver interface {
	Archive(ctx context.Context, doc ResultsDocument) (string, error)
	// Discard removes an archived document that was never linked to its tournament.
	Discard(ctx context.Context, key string) error
	PublicURL(key string) string
}

type uploaderArchiver struct {
	uploader FileUploader
}

func NewResultsArchiver(uploader FileUploader) ResultsArchiver {
	if uploader == nil {
		return noopArchiver{}
	}
	return &uploaderArchiver{uploader: uploader}
}

func ResultsKey(tournamentID int, at time.Time) string {
	return fmt.Sprintf("tournaments/%d/results-%d.json", tournamentID, at.Unix())
}

func (a *uploaderArchiver) Archive(ctx context.Context, doc ResultsDocument) (string, error) {
	if doc.Tournament == nil {
		return "", errors.New("results document has no tournament")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode results document")
	}

	key := ResultsKey(doc.Tournament.ID, doc.ArchivedAt)
	res, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return "", errors.Wrapf(err, "failed to archive results of tournament %d", doc.Tournament.ID)
	}
	return res.Key, nil
}

func (a *uploaderArchiver) Discard(ctx context.Context, key string) error {
	if err := a.uploader.Delete(ctx, key); err != nil && !errors.Is(err, ErrObjectNotFound) {
		return errors.Wrapf(err, "failed to discard results archive %s", key)
	}
	return nil
}

func (a *uploaderArchiver) PublicURL(key string) string {
	return a.uploader.GetPublicURL(key)
}

// noopArchiver is used when no object storage is configured.
type noopArchiver struct{}

func (noopArchiver) Archive(context.Context, ResultsDocument) (string, error) { return "", nil }

func (noopArchiver) Discard(context.Context, string) error { return nil }

func (noopArchiver) PublicURL(string) string { return "" }
