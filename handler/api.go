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
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-stress/chart"
	"github.com/penny-vault/pv-stress/middleware"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	MIMEApplicationMsgpack = "application/msgpack"
)

type PingResponse struct {
	Status  string `json:"status" msgpack:"status" example:"success"`
	Message string `json:"message" msgpack:"message" example:"API is alive"`
	Time    string `json:"time" msgpack:"time" example:"2021-06-19T08:09:10.115924-05:00"`
}

// Ping reports that the API is alive
func Ping(c *fiber.Ctx) error {
	var response PingResponse
	now, err := time.Now().MarshalText()
	if err != nil {
		log.Error().Err(err).Msg("error while getting time in ping")
		response = PingResponse{
			Status:  "error",
			Message: err.Error(),
			Time:    string(now),
		}
	} else {
		response = PingResponse{
			Status:  "success",
			Message: "API is alive",
			Time:    string(now),
		}
	}
	return c.JSON(response)
}

// wantsMsgpack reports whether the client prefers msgpack over JSON
func wantsMsgpack(c *fiber.Ctx) bool {
	return c.Accepts(fiber.MIMEApplicationJSON, MIMEApplicationMsgpack) == MIMEApplicationMsgpack
}

// encode serializes v in the format negotiated with the client and returns the body along with
// its content type
func encode(c *fiber.Ctx, v interface{}) ([]byte, string, error) {
	if wantsMsgpack(c) {
		body, err := msgpack.Marshal(v)
		return body, MIMEApplicationMsgpack, err
	}
	body, err := c.App().Config().JSONEncoder(v)
	return body, fiber.MIMEApplicationJSON, err
}

// respond writes v in the format negotiated with the client
func respond(c *fiber.Ctx, v interface{}) error {
	body, contentType, err := encode(c, v)
	if err != nil {
		return toFiberError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}

// toFiberError maps domain errors to HTTP errors; anything unexpected is logged and reported as
// an internal server error
func toFiberError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, scenario.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, portfolio.ErrInvalidWeight), errors.Is(err, chart.ErrUnsupportedFormat),
		errors.Is(err, chart.ErrInvalidSize):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, chart.ErrNoData):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Str("RequestID", middleware.RequestID(c)).Str("Path", c.Path()).Msg("request failed")
		return fiber.ErrInternalServerError
	}
}
