package ingest

import (
	"context"
	"encoding/json"

	"github.com/patrickudo2004/parchments/core/errors"
	"github.com/patrickudo2004/parchments/core/store"
	"github.com/patrickudo2004/parchments/internal/logging"
)

type summaryRecord struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Summary string `json:"summary"`
}

// ImportSummaries bulk-writes chapter summary enrichment records from
// a JSON array payload.
func (p *Pipeline) ImportSummaries(ctx context.Context, payload []byte) (int, error) {
	var records []summaryRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return 0, errors.NewParse("chapter summaries", "", err.Error())
	}
	if len(records) == 0 {
		return 0, errors.NewParse("chapter summaries", "", "payload is empty")
	}

	summaries := make([]store.ChapterSummary, len(records))
	for i, r := range records {
		summaries[i] = store.ChapterSummary{
			Book:    r.Book,
			Chapter: r.Chapter,
			Summary: r.Summary,
		}
	}
	if err := p.store.BulkPutSummaries(ctx, summaries); err != nil {
		return 0, err
	}
	logging.Info("chapter summaries imported", "count", len(summaries))
	return len(summaries), nil
}
