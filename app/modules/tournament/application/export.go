package tournamentservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	tournamentdomain "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/domain"
	tournamentdb "github.com/Black-And-White-Club/kart-bot/app/modules/tournament/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	standingsSheet = "Standings"
	statsSheet     = "Stats"
)

// ExportStandings renders the ladder and any stored stats as an XLSX workbook.
func (s *TournamentService) ExportStandings(ctx context.Context, tournamentID uuid.UUID) (FileResult, error) {
	return withTelemetry(s, ctx, "ExportStandings", tournamentID.String(), func(ctx context.Context) (FileResult, error) {
		t, err := s.repo.GetTournament(ctx, nil, tournamentID)
		if err != nil {
			if errors.Is(err, tournamentdb.ErrNotFound) {
				return failure[[]byte](ErrTournamentNotFound), nil
			}
			return FileResult{}, err
		}
		standings, err := s.repo.GetStandings(ctx, nil, tournamentID)
		if err != nil {
			return FileResult{}, err
		}
		stats, err := s.repo.GetStats(ctx, nil, tournamentID)
		if err != nil {
			return FileResult{}, err
		}

		data, err := buildWorkbook(t, standings, stats)
		if err != nil {
			return FileResult{}, err
		}
		return success(data), nil
	})
}

func buildWorkbook(t *tournamentdb.Tournament, standings []tournamentdb.Standing, stats []tournamentdb.TournamentStat) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), standingsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(statsSheet); err != nil {
		return nil, fmt.Errorf("create stats sheet: %w", err)
	}

	names := make(map[uuid.UUID]string, len(standings))
	rows := [][]any{{"Rank", "Player", "Tournament Rating", "All-Time Rating", "Winner"}}
	for i, st := range standings {
		names[st.PlayerID] = st.Name
		row := []any{i + 1, st.Name, st.Rating, st.AllTimeRating}
		if t.WinnerID != nil && *t.WinnerID == st.PlayerID {
			row = append(row, "yes")
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, standingsSheet, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"Stat", "Player", "Value", "High", "Low"}}
	for _, st := range stats {
		name, ok := names[st.PlayerID]
		if !ok {
			name = st.PlayerID.String()
		}
		row := []any{st.StatType, name, st.Value}
		if high, ok := st.ExtraData[tournamentdomain.ExtraHighValue]; ok {
			row = append(row, high, st.ExtraData[tournamentdomain.ExtraLowValue])
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, statsSheet, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
