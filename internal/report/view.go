package report

import (
	"fmt"
	"html/template"
	"time"

	"github.com/dailyerosion/depserver/internal/model"
)

// eventsPerRow controls how the top-events table is laid out.
const eventsPerRow = 2

// StatRow is one labeled, fully formatted line of the summary stats table.
type StatRow struct {
	Label string
	Value string
}

// EventView is one ranked top-loss event. OnClick is a prebuilt attribute
// invoking the hosting page's setDate() callback; building it in Go keeps
// the numeric arguments free of the JS-context escaper's padding.
type EventView struct {
	Rank    int
	Label   string
	Value   string
	OnClick template.HTMLAttr
}

// SummaryView is the data behind the summary fragment.
type SummaryView struct {
	Name      string
	HUC12     string
	Start     string
	End       string
	Stats     []StatRow
	EventRows [][]EventView
	Generated string
}

// PeriodRow is one formatted row of the yearly or monthly summary table.
type PeriodRow struct {
	Year      int
	Month     string
	Precip    string
	Runoff    string
	Loss      string
	Delivery  string
	HeavyDays string
	EventDays string
}

// PeriodView is the data behind the yearly and monthly summary tables.
type PeriodView struct {
	Title     string
	HUC       string
	HasMonth  bool
	Rows      []PeriodRow
	Generated string
}

func (r *Renderer) buildSummaryView(ws *model.Watershed, sum *model.RangeSummary, events []model.LossEvent, p Params) SummaryView {
	view := SummaryView{
		Name:  ws.Name,
		HUC12: ws.HUC12,
		Start: r.FormatDate(p.Start),
		End:   r.FormatDate(p.End),
		Stats: []StatRow{
			{Label: "Precipitation", Value: r.FormatDepth(sum.Precip)},
			{Label: "Runoff", Value: r.FormatDepth(sum.Runoff)},
			{Label: "Detachment", Value: r.FormatMass(sum.Loss)},
			{Label: "Hillslope Soil Loss", Value: r.FormatMass(sum.Delivery)},
		},
		Generated: r.Generated(),
	}

	var row []EventView
	for i, ev := range events {
		row = append(row, EventView{
			Rank:  i + 1,
			Label: r.FormatDate(ev.Date),
			Value: r.FormatMass(ev.Loss),
			OnClick: template.HTMLAttr(fmt.Sprintf(
				`onclick="setDate(%d, %d, %d); return false;"`,
				ev.Date.Year(), int(ev.Date.Month()), ev.Date.Day())),
		})
		if len(row) == eventsPerRow {
			view.EventRows = append(view.EventRows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		view.EventRows = append(view.EventRows, row)
	}

	return view
}

func (r *Renderer) buildYearlyView(huc string, years []model.YearlySummary) PeriodView {
	view := PeriodView{
		Title:     "Yearly Summary",
		HUC:       huc,
		Generated: r.Generated(),
	}
	for _, y := range years {
		view.Rows = append(view.Rows, PeriodRow{
			Year:      y.Year,
			Precip:    r.FormatConverted(y.Precip),
			Runoff:    r.FormatConverted(y.Runoff),
			Loss:      r.FormatConverted(y.Loss),
			Delivery:  r.FormatConverted(y.Delivery),
			HeavyDays: r.FormatDays(y.HeavyPrecipDays),
			EventDays: r.FormatDays(y.EventDays),
		})
	}
	return view
}

func (r *Renderer) buildMonthlyView(huc string, months []model.MonthlySummary) PeriodView {
	view := PeriodView{
		Title:     "Monthly Summary",
		HUC:       huc,
		HasMonth:  true,
		Generated: r.Generated(),
	}
	for _, m := range months {
		view.Rows = append(view.Rows, PeriodRow{
			Year:      m.Year,
			Month:     time.Month(m.Month).String(),
			Precip:    r.FormatConverted(m.Precip),
			Runoff:    r.FormatConverted(m.Runoff),
			Loss:      r.FormatConverted(m.Loss),
			Delivery:  r.FormatConverted(m.Delivery),
			HeavyDays: r.FormatDays(m.HeavyPrecipDays),
			EventDays: r.FormatDays(m.EventDays),
		})
	}
	return view
}
