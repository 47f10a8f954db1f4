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
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// wireFrame is the encoded form of a DataFrame; values that are NaN or ±Inf are written as null
type wireFrame struct {
	Dates    []time.Time  `json:"dates" msgpack:"dates"`
	ColNames []string     `json:"colNames" msgpack:"colNames"`
	Vals     [][]*float64 `json:"vals" msgpack:"vals"`
}

func (df DataFrame) toWire() wireFrame {
	wire := wireFrame{
		Dates:    df.Dates,
		ColNames: df.ColNames,
		Vals:     make([][]*float64, len(df.Vals)),
	}

	for colIdx, col := range df.Vals {
		wireCol := make([]*float64, len(col))
		for rowIdx := range col {
			val := col[rowIdx]
			if math.IsNaN(val) || math.IsInf(val, 0) {
				continue
			}
			wireCol[rowIdx] = &val
		}
		wire.Vals[colIdx] = wireCol
	}

	return wire
}

// fromWire restores a decoded frame; null values become NaN
func (df *DataFrame) fromWire(wire wireFrame) {
	df.Dates = wire.Dates
	df.ColNames = wire.ColNames
	df.Vals = make([][]float64, len(wire.Vals))
	for colIdx, wireCol := range wire.Vals {
		col := make([]float64, len(wireCol))
		for rowIdx, val := range wireCol {
			if val == nil {
				col[rowIdx] = math.NaN()
				continue
			}
			col[rowIdx] = *val
		}
		df.Vals[colIdx] = col
	}
}

// MarshalJSON encodes the frame writing values that are not finite as null
func (df DataFrame) MarshalJSON() ([]byte, error) {
	return json.Marshal(df.toWire())
}

// UnmarshalJSON decodes a frame; null values are read as NaN
func (df *DataFrame) UnmarshalJSON(data []byte) error {
	wire := wireFrame{}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	df.fromWire(wire)
	return nil
}

// EncodeMsgpack encodes the frame writing values that are not finite as nil
func (df DataFrame) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(df.toWire())
}

// DecodeMsgpack decodes a frame; nil values are read as NaN
func (df *DataFrame) DecodeMsgpack(dec *msgpack.Decoder) error {
	wire := wireFrame{}
	if err := dec.Decode(&wire); err != nil {
		return err
	}
	df.fromWire(wire)
	return nil
}
