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
	"context"
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/penny-vault/pv-stress/chart"
	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/observability/opentelemetry"
	"github.com/penny-vault/pv-stress/portfolio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StressRequest selects an event and the raw percentage weights to test against it. When
// Allocation is empty the default weights for the event are used.
type StressRequest struct {
	Event      string               `json:"event" msgpack:"event"`
	Allocation portfolio.Allocation `json:"allocation" msgpack:"allocation"`
}

type renderFunc func(*engine.Result, chart.Options) ([]byte, error)

func parseStressRequest(c *fiber.Ctx) (*StressRequest, error) {
	req := &StressRequest{}
	if err := json.Unmarshal(c.Body(), req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "request body must be a JSON stress request")
	}

	if req.Event == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "event is required")
	}

	if len(req.Allocation) == 0 {
		assets, err := engine.AvailableAssets(req.Event)
		if err != nil {
			return nil, toFiberError(c, err)
		}
		req.Allocation = portfolio.DefaultAllocation(assets)
	}

	return req, nil
}

// cacheKey hashes the canonical form of the request; map keys are marshaled in sorted order
func (req *StressRequest) cacheKey(namespace string, extra ...string) string {
	canonical, err := json.Marshal(req)
	if err != nil {
		log.Warn().Err(err).Msg("could not marshal stress request for cache key")
		return ""
	}

	parts := [][]byte{canonical}
	for _, e := range extra {
		parts = append(parts, []byte(e))
	}
	return common.CacheKey(namespace, parts...)
}

func startSpan(c *fiber.Ctx, name string, req *StressRequest) (context.Context, trace.Span) {
	attrs := append(opentelemetry.SpanAttributesFromFiber(c), attribute.String("Event", req.Event))
	return otel.Tracer(opentelemetry.Name).Start(c.UserContext(), name, trace.WithAttributes(attrs...))
}

// cached returns the value stored under key or builds, stores and returns it
func cached(ctx context.Context, key string, build func() ([]byte, error)) ([]byte, error) {
	if key != "" {
		body, err := common.CacheGet(ctx, key)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			log.Warn().Err(err).Str("Key", key).Msg("cache lookup failed")
		}
	}

	body, err := build()
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := common.CacheSet(ctx, key, body); err != nil {
			log.Warn().Err(err).Str("Key", key).Msg("could not cache response")
		}
	}

	return body, nil
}

// RunStress stress tests an allocation against an event
func RunStress(c *fiber.Ctx) error {
	req, err := parseStressRequest(c)
	if err != nil {
		return err
	}

	ctx, span := startSpan(c, "stress.Run", req)
	defer span.End()

	contentType := fiber.MIMEApplicationJSON
	if wantsMsgpack(c) {
		contentType = MIMEApplicationMsgpack
	}

	body, err := cached(ctx, req.cacheKey("stress", contentType), func() ([]byte, error) {
		result, err := engine.Run(req.Event, req.Allocation)
		if err != nil {
			return nil, err
		}
		body, _, err := encode(c, result)
		return body, err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stress test failed")
		return toFiberError(c, err)
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(body)
}

// ValueChart renders the portfolio value of a stress test
func ValueChart(c *fiber.Ctx) error {
	return renderChart(c, "value", chart.PortfolioValue)
}

// ContributionChart renders the per-asset contributions of a stress test
func ContributionChart(c *fiber.Ctx) error {
	return renderChart(c, "contribution", chart.Contributions)
}

func renderChart(c *fiber.Ctx, kind string, render renderFunc) error {
	req, err := parseStressRequest(c)
	if err != nil {
		return err
	}

	ctx, span := startSpan(c, "stress.Chart", req)
	defer span.End()
	span.SetAttributes(attribute.String("Chart", kind))

	format, err := chart.ParseFormat(c.Query("format"))
	if err != nil {
		return toFiberError(c, err)
	}

	opts := chart.Options{
		Width:  queryInt(c, "width", viper.GetInt("chart.width")),
		Height: queryInt(c, "height", viper.GetInt("chart.height")),
		Format: format,
	}
	if err := opts.Validate(viper.GetInt("chart.max_width"), viper.GetInt("chart.max_height")); err != nil {
		return toFiberError(c, err)
	}

	key := req.cacheKey("chart", kind, string(opts.Format), strconv.Itoa(opts.Width), strconv.Itoa(opts.Height))
	img, err := cached(ctx, key, func() ([]byte, error) {
		result, err := engine.Run(req.Event, req.Allocation)
		if err != nil {
			return nil, err
		}
		return render(result, opts)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chart rendering failed")
		return toFiberError(c, err)
	}

	c.Set(fiber.HeaderContentType, opts.Format.ContentType())
	return c.Send(img)
}

func queryInt(c *fiber.Ctx, key string, defaultValue int) int {
	val, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return val
}
