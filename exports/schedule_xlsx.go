package exports

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/WilliamSoderberg/volley-bracket/models"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

const (
	ScheduleSheet = "Schedule"
	TeamsSheet    = "Teams"

	// ContentType is the MIME type of the generated workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var scheduleHeader = []interface{}{"Match", "Time", "Court", "Bracket", "Round", "Team 1", "Team 2", "Result", "Winner"}

// WriteSchedule renders the day plan of t as an xlsx workbook: one row per
// numbered match on the Schedule sheet, the seeded team list on Teams.
func WriteSchedule(w io.Writer, t *models.Tournament) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ScheduleSheet); err != nil {
		return fmt.Errorf("failed to name schedule sheet: %w", err)
	}
	if _, err := f.NewSheet(TeamsSheet); err != nil {
		return fmt.Errorf("failed to add teams sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: t.Name, Subject: t.Date}); err != nil {
		return fmt.Errorf("failed to set workbook properties: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	rows := [][]interface{}{scheduleHeader}
	for _, e := range services.BuildSchedule(t) {
		rows = append(rows, []interface{}{
			e.Number,
			e.Time.Format(models.StartTimeLayout),
			e.Court,
			string(e.Bracket),
			e.Round,
			e.Team1,
			e.Team2,
			formatSets(e.Sets),
			e.Winner,
		})
	}
	if err := writeRows(f, ScheduleSheet, rows, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(ScheduleSheet, "F", "G", 24); err != nil {
		return fmt.Errorf("failed to size team columns: %w", err)
	}
	if err := f.SetPanes(ScheduleSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	teams := [][]interface{}{{"Seed", "ID", "Name"}}
	for i, team := range t.Teams {
		teams = append(teams, []interface{}{i + 1, team.ID, team.Name})
	}
	if err := writeRows(f, TeamsSheet, teams, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

// formatSets renders sets as "25-20, 18-25".
func formatSets(sets []models.Set) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%d-%d", s.P1, s.P2)
	}
	return strings.Join(parts, ", ")
}
