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
package middleware_test

import (
	"net/http/httptest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-stress/middleware"
)

var _ = Describe("Middleware", func() {
	var app *fiber.App

	BeforeEach(func() {
		app = fiber.New()
		app.Use(middleware.NewRequestID())
		app.Use(middleware.NewLogger())
		app.Get("/ok", func(c *fiber.Ctx) error {
			return c.SendString(middleware.RequestID(c))
		})
		app.Get("/missing", func(c *fiber.Ctx) error {
			return fiber.ErrNotFound
		})
	})

	It("assigns a request id", func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		_, err = uuid.Parse(resp.Header.Get(fiber.HeaderXRequestID))
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps the request id sent by the client", func() {
		req := httptest.NewRequest("GET", "/ok", nil)
		req.Header.Set(fiber.HeaderXRequestID, "abc-123")
		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Header.Get(fiber.HeaderXRequestID)).To(Equal("abc-123"))
	})

	It("runs the error handler for failed requests", func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
	})
})
