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
package handler

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/portfolio"
)

type AssetsResponse struct {
	Event    string               `json:"event" msgpack:"event"`
	Assets   []string             `json:"assets" msgpack:"assets"`
	Defaults portfolio.Allocation `json:"defaults" msgpack:"defaults"`
}

// ListEvents returns every historical event in its fixed order
func ListEvents(c *fiber.Ctx) error {
	return respond(c, engine.Events())
}

// GetEvent returns a single event by name
func GetEvent(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return fiber.ErrBadRequest
	}

	event, err := engine.GetEvent(name)
	if err != nil {
		return toFiberError(c, err)
	}
	return respond(c, event)
}

// ListAssets returns the assets that may be weighted for an event along with their default
// weights
func ListAssets(c *fiber.Ctx) error {
	name := c.Query("event")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "event query parameter is required")
	}

	assets, err := engine.AvailableAssets(name)
	if err != nil {
		return toFiberError(c, err)
	}

	return respond(c, AssetsResponse{
		Event:    name,
		Assets:   assets,
		Defaults: portfolio.DefaultAllocation(assets),
	})
}
