package usecase

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/example/farm-dashboard/internal/apperror"
	"github.com/example/farm-dashboard/internal/timewindow"
)

// Workbook sheet names.
const (
	SheetSummary      = "Summary"
	SheetVisitorTrend = "VisitorTrend"
	SheetPurpose      = "Purpose"
	SheetHourly       = "Hourly"
	SheetWeekday      = "Weekday"
	SheetRegion       = "Region"
)

const reportResource = "dashboardReport"

// ExportWorkbook builds the caller's dashboard and renders it as an xlsx
// workbook. Callers must Close the returned file.
func (uc *DashboardUseCase) ExportWorkbook(ctx context.Context, req Request) (*excelize.File, error) {
	dashboard, visible, err := uc.load(ctx, req)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperror.New(apperror.CodeExportEmpty, apperror.Params{Resource: reportResource}, nil)
	}
	f, err := BuildWorkbook(dashboard)
	if err != nil {
		return nil, apperror.New(apperror.CodeExportFailed, apperror.Params{Resource: reportResource}, err)
	}
	return f, nil
}

// BuildWorkbook renders d with one sheet per chart.
func BuildWorkbook(d *Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(d)},
		{SheetVisitorTrend, visitorTrendRows(d)},
		{SheetPurpose, purposeRows(d)},
		{SheetHourly, hourlyRows(d)},
		{SheetWeekday, weekdayRows(d)},
		{SheetRegion, regionRows(d)},
	}
	for _, sheet := range sheets {
		if sheet.name != SheetSummary {
			if _, err := f.NewSheet(sheet.name); err != nil {
				f.Close()
				return nil, err
			}
		}
		if err := writeRows(f, sheet.name, sheet.rows); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %s: %w", sheet.name, err)
		}
	}
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func summaryRows(d *Dashboard) [][]interface{} {
	s := d.Stats
	return [][]interface{}{
		{"항목", "값"},
		{"생성 시각", d.GeneratedAt.In(timewindow.KST).Format("2006-01-02 15:04:05 MST")},
		{"전체 사용자", d.TotalUsers},
		{"전체 농장", d.TotalFarms},
		{"전체 방문자", d.TotalVisitors},
		{"전체 로그", d.TotalLogs},
		{"최근 30일 방문자", s.TotalVisitors},
		{"오늘 방문자", s.TodayVisitors},
		{"이번 주 방문자", s.WeeklyVisitors},
		{"소독률(%)", s.DisinfectionRate},
		{"소독 등급", s.DisinfectionGrade},
		{"사용자 증감(%)", d.Trends.UserGrowth},
		{"농장 증감(%)", d.Trends.FarmGrowth},
		{"방문자 증감(%)", d.Trends.VisitorGrowth},
		{"로그 증감(%)", d.Trends.LogGrowth},
	}
}

func visitorTrendRows(d *Dashboard) [][]interface{} {
	rows := [][]interface{}{{"날짜", "방문자", "소독 완료"}}
	for _, p := range d.VisitorTrend {
		rows = append(rows, []interface{}{p.Date, p.Visitors, p.Disinfected})
	}
	return rows
}

func purposeRows(d *Dashboard) [][]interface{} {
	rows := [][]interface{}{{"방문 목적", "방문자", "비율(%)"}}
	for _, p := range d.PurposeStats {
		rows = append(rows, []interface{}{p.Purpose, p.Count, p.Percentage})
	}
	return rows
}

func hourlyRows(d *Dashboard) [][]interface{} {
	rows := [][]interface{}{{"시간", "방문자"}}
	for _, t := range d.TimeStats {
		rows = append(rows, []interface{}{t.Hour, t.Count})
	}
	return rows
}

func weekdayRows(d *Dashboard) [][]interface{} {
	rows := [][]interface{}{{"요일", "방문자", "비율(%)"}}
	for _, w := range d.WeekdayStats {
		rows = append(rows, []interface{}{w.Day, w.Count, w.Percentage})
	}
	return rows
}

func regionRows(d *Dashboard) [][]interface{} {
	rows := [][]interface{}{{"지역", "방문자", "비율(%)"}}
	for _, r := range d.RegionStats {
		rows = append(rows, []interface{}{r.Region, r.Count, r.Percentage})
	}
	return rows
}
