// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataframe

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
)

// New creates an empty dataframe with the given date axis and zero-filled columns
func New(dates []time.Time, colNames ...string) *DataFrame {
	df := &DataFrame{
		Dates:    make([]time.Time, len(dates)),
		ColNames: make([]string, len(colNames)),
		Vals:     make([][]float64, len(colNames)),
	}

	copy(df.Dates, dates)
	copy(df.ColNames, colNames)
	for idx := range df.Vals {
		df.Vals[idx] = make([]float64, len(dates))
	}

	return df
}

// AsMap creates a map with the date as the key and the specified column as the value
func (df *DataFrame) AsMap(colName string) map[time.Time]float64 {
	res := make(map[time.Time]float64, df.Len())
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		// column does not exist, return empty map
		return res
	}

	for idx, date := range df.Dates {
		res[date] = df.Vals[colIdx][idx]
	}

	return res
}

// Column returns the values of the named column. The returned slice is shared with the dataframe.
func (df *DataFrame) Column(colName string) ([]float64, error) {
	colIdx := df.ColIndex(colName)
	if colIdx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, colName)
	}
	return df.Vals[colIdx], nil
}

// ColIndex returns the index of the specified column; returns -1 if column doesn't exist
func (df *DataFrame) ColIndex(colName string) int {
	for idx, val := range df.ColNames {
		if colName == val {
			return idx
		}
	}

	return -1
}

// ColCount returns the number of columns in the dataframe
func (df *DataFrame) ColCount() int {
	return len(df.ColNames)
}

// Copy creates a deep copy of the dataframe
func (df *DataFrame) Copy() *DataFrame {
	df2 := &DataFrame{
		ColNames: make([]string, len(df.ColNames)),
		Dates:    make([]time.Time, len(df.Dates)),
		Vals:     make([][]float64, len(df.Vals)),
	}

	copy(df2.ColNames, df.ColNames)
	copy(df2.Dates, df.Dates)

	for idx := range df2.Vals {
		df2.Vals[idx] = make([]float64, len(df.Vals[idx]))
		copy(df2.Vals[idx], df.Vals[idx])
	}

	return df2
}

// End returns the last time in the DataFrame
func (df *DataFrame) End() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[len(df.Dates)-1]
}

// Insert a new column to the end of the dataframe
func (df *DataFrame) Insert(name string, col []float64) *DataFrame {
	if len(col) != len(df.Dates) {
		log.Panic().Str("Column", name).Int("NumVals", len(col)).Int("NumRows", len(df.Dates)).Msg("column length must equal number of rows")
	}
	df.ColNames = append(df.ColNames, name)
	df.Vals = append(df.Vals, col)
	return df
}

// InsertRow adds a new row to the dataframe. Date must be after the last date in the dataframe and vals must equal the number
// of columns.
func (df *DataFrame) InsertRow(date time.Time, vals ...float64) error {
	if len(df.Dates) != 0 && !df.End().Before(date) {
		log.Error().Time("LastDate", df.End()).Time("NewDate", date).Msg("new date must be after last date")
		return ErrDatesNotOrdered
	}

	if len(vals) != len(df.ColNames) {
		log.Error().Int("NumValsPassed", len(vals)).Int("NumColumns", len(df.ColNames)).Msg("number of vals passed must equal number of columns")
		return ErrColumnMismatch
	}

	df.Dates = append(df.Dates, date)
	for colIdx := range df.ColNames {
		df.Vals[colIdx] = append(df.Vals[colIdx], vals[colIdx])
	}

	return nil
}

// Last returns a new dataframe with only the last row of the current dataframe
func (df *DataFrame) Last() *DataFrame {
	if df.Len() == 0 {
		return df.Copy()
	}

	lastRow := len(df.Dates) - 1
	lastVals := make([][]float64, len(df.ColNames))
	for idx, col := range df.Vals {
		lastVals[idx] = []float64{col[lastRow]}
	}

	colNames := make([]string, len(df.ColNames))
	copy(colNames, df.ColNames)

	return &DataFrame{
		ColNames: colNames,
		Dates:    []time.Time{df.Dates[lastRow]},
		Vals:     lastVals,
	}
}

// Len returns the number of rows in the dataframe
func (df *DataFrame) Len() int {
	return len(df.Dates)
}

// Row returns the values of row idx keyed by column name
func (df *DataFrame) Row(idx int) map[string]float64 {
	row := make(map[string]float64, len(df.ColNames))
	if idx < 0 || idx >= df.Len() {
		return row
	}
	for colIdx, colName := range df.ColNames {
		row[colName] = df.Vals[colIdx][idx]
	}
	return row
}

// Start returns the first date of the dataframe
func (df *DataFrame) Start() time.Time {
	if len(df.Dates) == 0 {
		return time.Time{}
	}
	return df.Dates[0]
}

// Table prints an ASCII formatted table
func (df *DataFrame) Table() string {
	if len(df.Dates) == 0 {
		return "<NO DATA>" // nothing to do as there is no data available in the dataframe
	}

	// construct table header
	tableCols := append([]string{"Date"}, df.ColNames...)

	// initialize table
	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(tableCols)
	footer := make([]string, len(tableCols))
	footer[0] = "Num Rows"
	if len(footer) > 1 {
		footer[1] = fmt.Sprintf("%d", df.Len())
	}
	table.SetFooter(footer)
	table.SetBorder(false)

	for idx, date := range df.Dates {
		row := make([]string, 0, len(df.Vals)+1)
		row = append(row, date.Format("2006-01-02"))
		for _, col := range df.Vals {
			row = append(row, fmt.Sprintf("%.4f", col[idx]))
		}
		table.Append(row)
	}

	table.Render()
	return s.String()
}

// Trim the dataframe to the specified date range (inclusive). The returned dataframe shares
// value storage with df.
func (df *DataFrame) Trim(begin, end time.Time) *DataFrame {
	df2 := &DataFrame{
		ColNames: df.ColNames,
		Dates:    []time.Time{},
		Vals:     make([][]float64, len(df.Vals)),
	}

	for colIdx := range df2.Vals {
		df2.Vals[colIdx] = []float64{}
	}

	// requested range is invalid or dataframe is empty
	if end.Before(begin) || df.Len() == 0 {
		return df2
	}

	// requested range does not overlap the dataframe
	if end.Before(df.Start()) || begin.After(df.End()) {
		return df2
	}

	beginIdx := sort.Search(len(df.Dates), func(i int) bool {
		return !df.Dates[i].Before(begin)
	})

	endIdx := sort.Search(len(df.Dates), func(i int) bool {
		return df.Dates[i].After(end)
	})

	df2.Dates = df.Dates[beginIdx:endIdx]
	for colIdx, col := range df.Vals {
		df2.Vals[colIdx] = col[beginIdx:endIdx]
	}

	return df2
}

// TrimMonths trims the dataframe to every row whose calendar month lies within the months of
// begin and end (inclusive)
func (df *DataFrame) TrimMonths(begin, end time.Time) *DataFrame {
	if end.Before(begin) {
		return df.Trim(begin, end)
	}
	return df.Trim(MonthStart(begin), MonthEnd(end).Add(24*time.Hour-time.Nanosecond))
}

// Window returns the rows of the named column between begin and end (inclusive, month granular)
func (df *DataFrame) Window(colName string, begin, end time.Time) []float64 {
	trimmed := df.TrimMonths(begin, end)
	colIdx := trimmed.ColIndex(colName)
	if colIdx == -1 {
		return []float64{}
	}
	return trimmed.Vals[colIdx]
}

// Equal reports whether both dataframes contain identical dates, columns, and values. NaN values
// compare equal to each other.
func (df *DataFrame) Equal(other *DataFrame) bool {
	if df.Len() != other.Len() || df.ColCount() != other.ColCount() {
		return false
	}

	for idx := range df.Dates {
		if !df.Dates[idx].Equal(other.Dates[idx]) {
			return false
		}
	}

	for colIdx, colName := range df.ColNames {
		if other.ColNames[colIdx] != colName {
			return false
		}
		for rowIdx, val := range df.Vals[colIdx] {
			otherVal := other.Vals[colIdx][rowIdx]
			if val != otherVal && !(math.IsNaN(val) && math.IsNaN(otherVal)) {
				return false
			}
		}
	}

	return true
}
