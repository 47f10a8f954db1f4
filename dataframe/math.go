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
	"gonum.org/v1/gonum/floats"
)

// AddScalar adds the scalar value to all columns in dataframe df and returns a new dataframe
func (df *DataFrame) AddScalar(scalar float64) *DataFrame {
	df = df.Copy()
	for colIdx := range df.ColNames {
		floats.AddConst(scalar, df.Vals[colIdx])
	}
	return df
}

// MulScalar multiplies all columns in dataframe df by the scalar and returns a new dataframe
func (df *DataFrame) MulScalar(scalar float64) *DataFrame {
	df = df.Copy()
	for colIdx := range df.ColNames {
		floats.Scale(scalar, df.Vals[colIdx])
	}
	return df
}

// CumProd computes the running product of each column and returns a new dataframe
func (df *DataFrame) CumProd() *DataFrame {
	df2 := df.Copy()
	for colIdx := range df2.ColNames {
		floats.CumProd(df2.Vals[colIdx], df.Vals[colIdx])
	}
	return df2
}

// CumulativeReturn treats each value as a periodic return and compounds it forward, i.e.
// ∏(1 + r_i) - 1 for every row. A new dataframe is returned.
func (df *DataFrame) CumulativeReturn() *DataFrame {
	return df.AddScalar(1).CumProd().AddScalar(-1)
}
