package gormstorage

import (
	"errors"
	"fmt"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/model/convert"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"gorm.io/gorm"
)

// ErrRunNotFound is returned by LoadRun when no matching run is stored.
var ErrRunNotFound = errors.New("run not found")

// LoadRun reads a stored run with its ticks and alert. An empty runID
// selects the most recently started run.
func LoadRun(db *gorm.DB, runID string) (*v1.RunData, error) {
	var row model.Run
	q := db.Order("id DESC")
	if runID != "" {
		q = q.Where("run_uuid = ?", runID)
	}
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to read run: %w", err)
	}

	run, summary := convert.RunToCore(row)
	data := &v1.RunData{
		Run:              run,
		Summary:          summary,
		ExtensionVersion: row.Version,
	}

	var ticks []model.Tick
	if err := db.Where("run_id = ?", row.ID).Order("tick").Find(&ticks).Error; err != nil {
		return nil, fmt.Errorf("failed to read ticks: %w", err)
	}
	data.Ticks = make([]core.TickRecord, 0, len(ticks))
	for _, t := range ticks {
		data.Ticks = append(data.Ticks, convert.TickToCore(t, run.ID))
	}

	var alerts []model.AlertEvent
	if err := db.Where("run_id = ?", row.ID).Limit(1).Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to read alert: %w", err)
	}
	if len(alerts) > 0 {
		ev := convert.AlertEventToCore(alerts[0], run.ID)
		data.Alert = &ev
	}
	return data, nil
}
