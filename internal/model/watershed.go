// Package model defines the domain types shared by the store and report layers.
package model

import "time"

// Watershed is one HUC12 watershed unit scoped to a modeled scenario.
type Watershed struct {
	HUC12    string
	Name     string
	Scenario int
}

// RangeSummary holds daily-result sums over an inclusive date range, in the
// metric units the store keeps: millimeters for water depth and metric
// tons/hectare for soil quantities. Conversion to US customary units happens
// at render time only.
type RangeSummary struct {
	Precip   float64
	Runoff   float64
	Loss     float64
	Delivery float64
}

// DailyResult is one day of modeled output for a HUC12, as delivered by the
// upstream modeling run. Units are metric: millimeters for water depth and
// metric tons/hectare for soil quantities.
type DailyResult struct {
	HUC12       string
	Scenario    int
	Valid       time.Time
	QCPrecip    float64
	AvgRunoff   float64
	AvgLoss     float64
	AvgDelivery float64
}

// LossEvent is one day of strictly positive modeled hillslope soil loss.
type LossEvent struct {
	Date time.Time
	Loss float64
}

// YearlySummary is one year of aggregated results for a HUC12 (or, averaged
// across member HUC12s, a HUC8). Water depths are in inches and soil
// quantities in US tons/acre; the aggregation queries convert in SQL.
type YearlySummary struct {
	Year            int
	Precip          float64
	Runoff          float64
	Loss            float64
	Delivery        float64
	HeavyPrecipDays float64
	EventDays       float64
}

// MonthlySummary is one calendar month of aggregated results, with the same
// units and HUC8 averaging behavior as YearlySummary.
type MonthlySummary struct {
	Year            int
	Month           int
	Precip          float64
	Runoff          float64
	Loss            float64
	Delivery        float64
	HeavyPrecipDays float64
	EventDays       float64
}
