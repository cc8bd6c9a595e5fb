// Package report renders team summaries as JSON or as an XLSX workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/rosterrank/internal/domain/types"
)

// Sheet names of the XLSX report.
const (
	SheetTeams   = "Teams"
	SheetPlayers = "Players"
)

var (
	teamsHeader   = []any{"Rank", "Team", "Average Ranked MMR", "Ranked Players"}
	playersHeader = []any{"Team", "Player", "Battle Tag", "Race", "MMR"}
)

// WriteJSON writes summaries as a 2-space indented JSON array followed by a
// newline. No teams is written as [].
func WriteJSON(w io.Writer, summaries []types.TeamSummary) error {
	if summaries == nil {
		summaries = []types.TeamSummary{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteJSON, err)
	}
	return nil
}

// Workbook builds the XLSX report in memory. The caller closes the file.
func Workbook(summaries []types.TeamSummary) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(f.GetActiveSheetIndex())

	teamsIdx, err := f.NewSheet(SheetTeams)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWriteXLSX, err)
	}
	if _, err := f.NewSheet(SheetPlayers); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWriteXLSX, err)
	}
	f.SetActiveSheet(teamsIdx)
	if err := f.DeleteSheet(defaultSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWriteXLSX, err)
	}

	if err := fill(f, summaries); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrWriteXLSX, err)
	}
	return f, nil
}

func fill(f *excelize.File, summaries []types.TeamSummary) error {
	if err := setRow(f, SheetTeams, 1, teamsHeader); err != nil {
		return err
	}
	if err := setRow(f, SheetPlayers, 1, playersHeader); err != nil {
		return err
	}

	playerRow := 2
	for i, team := range summaries {
		row := []any{i + 1, team.Name, team.AverageRankedMMR, team.RankedPlayers()}
		if err := setRow(f, SheetTeams, i+2, row); err != nil {
			return err
		}
		for _, p := range team.Players {
			row := []any{team.Name, p.BattlefyName, p.MatchedTag, p.Race, p.MMR}
			if err := setRow(f, SheetPlayers, playerRow, row); err != nil {
				return err
			}
			playerRow++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WriteXLSX writes the XLSX report to path.
func WriteXLSX(path string, summaries []types.TeamSummary) error {
	if path == "" {
		return ErrNoPath
	}
	f, err := Workbook(summaries)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteXLSX, path, err)
	}
	return nil
}
