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

import "time"

// MonthStart returns midnight on the first day of the month containing t
func MonthStart(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns midnight on the last day of the month containing t
func MonthEnd(t time.Time) time.Time {
	return MonthStart(t).AddDate(0, 1, -1)
}

// MonthEnds returns every calendar month end between begin and end (inclusive). Month ends
// that fall after end are not included, e.g. 1987-01-01 through 2024-01-01 yields
// 1987-01-31 through 2023-12-31.
func MonthEnds(begin, end time.Time) []time.Time {
	dates := make([]time.Time, 0, 12)
	if end.Before(begin) {
		return dates
	}

	for dt := MonthEnd(begin); !dt.After(end); dt = MonthEnd(MonthStart(dt).AddDate(0, 1, 0)) {
		dates = append(dates, dt)
	}

	return dates
}

// InMonthRange reports whether the calendar month of t lies within the months of begin and end
// (inclusive)
func InMonthRange(t, begin, end time.Time) bool {
	m := monthNumber(t)
	return m >= monthNumber(begin) && m <= monthNumber(end)
}

func monthNumber(t time.Time) int {
	year, month, _ := t.Date()
	return year*12 + int(month) - 1
}
