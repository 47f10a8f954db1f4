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
package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/handler"
	"github.com/penny-vault/pv-stress/router"
	"github.com/penny-vault/pv-stress/scenario"
	"github.com/spf13/viper"
	"github.com/vmihailenco/msgpack/v5"
)

func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return body
}

func post(app *fiber.App, path, body string, headers ...string) *http.Response {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for idx := 0; idx+1 < len(headers); idx += 2 {
		req.Header.Set(headers[idx], headers[idx+1])
	}
	resp, err := app.Test(req, -1)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

var _ = Describe("Handler", func() {
	var app *fiber.App

	BeforeEach(func() {
		viper.Set("cache.redis", false)
		viper.Set("cache.local_size", 16)
		viper.Set("chart.width", 600)
		viper.Set("chart.height", 400)
		Expect(common.SetupCache()).To(Succeed())

		app = fiber.New(fiber.Config{
			JSONEncoder: json.Marshal,
			JSONDecoder: json.Unmarshal,
		})
		router.SetupRoutes(app)
	})

	It("responds to ping", func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/v1/", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

		ping := handler.PingResponse{}
		Expect(json.Unmarshal(readBody(resp), &ping)).To(Succeed())
		Expect(ping.Status).To(Equal("success"))
	})

	Context("events", func() {
		It("lists every event", func() {
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/event/", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			events := []scenario.Event{}
			Expect(json.Unmarshal(readBody(resp), &events)).To(Succeed())
			Expect(events).To(HaveLen(5))
			Expect(events[0].Name).To(Equal("1987 Crash"))
		})

		It("gets an event by name", func() {
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/event/Asian%20Crisis", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			event := scenario.Event{}
			Expect(json.Unmarshal(readBody(resp), &event)).To(Succeed())
			Expect(event.Name).To(Equal("Asian Crisis"))
			Expect(event.Shocks).To(HaveLen(4))
		})

		It("returns 404 for an unknown event", func() {
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/event/Nonexistent", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Context("assets", func() {
		It("lists the assets available for an event with default weights", func() {
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/asset/?event=COVID-19%20Pandemic", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			assets := handler.AssetsResponse{}
			Expect(json.Unmarshal(readBody(resp), &assets)).To(Succeed())
			Expect(assets.Assets).To(Equal([]string{"Stocks", "Bonds", "Gold", "Oil", "Travel & Leisure"}))
			Expect(assets.Defaults["Bonds"]).To(Equal(40.0))
			Expect(assets.Defaults["Oil"]).To(Equal(0.0))
		})

		It("requires an event", func() {
			resp, err := app.Test(httptest.NewRequest("GET", "/v1/asset/", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Context("stress tests", func() {
		It("runs a stress test", func() {
			resp := post(app, "/v1/stress/", `{"event": "1987 Crash", "allocation": {"Stocks": 100}}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			result := engine.Result{}
			Expect(json.Unmarshal(readBody(resp), &result)).To(Succeed())
			Expect(result.Event.Name).To(Equal("1987 Crash"))
			Expect(result.Risk.MaxDrawDown).To(BeNumerically("~", 11.7649/70-1, 1e-9))
			Expect(result.Window.Len()).To(Equal(3))
		})

		It("returns the cached response for a repeated request", func() {
			body := `{"event": "1987 Crash", "allocation": {"Stocks": 60, "Bonds": 40}}`
			first := readBody(post(app, "/v1/stress/", body))
			second := readBody(post(app, "/v1/stress/", body))
			Expect(second).To(Equal(first))
		})

		It("uses the default allocation when none is given", func() {
			resp := post(app, "/v1/stress/", `{"event": "2008 Financial Crisis"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			result := engine.Result{}
			Expect(json.Unmarshal(readBody(resp), &result)).To(Succeed())
			Expect(result.Allocation["Stocks"]).To(BeNumerically("~", 0.3, 1e-12))
			Expect(result.Allocation["Real Estate"]).To(Equal(0.0))
		})

		DescribeTable("runs every event with the default allocation",
			func(name string) {
				resp := post(app, "/v1/stress/", fmt.Sprintf(`{"event": %q}`, name))
				Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

				result := engine.Result{}
				Expect(json.Unmarshal(readBody(resp), &result)).To(Succeed())
				Expect(result.Event.Name).To(Equal(name))
				Expect(result.Path.Len()).To(Equal(engine.BuildReturnSeries().Len()))
				Expect(result.Risk.MaxDrawDown).To(BeNumerically("<=", 0))
				Expect(result.Risk.AnnualizedVolatility).To(BeNumerically(">=", 0))
			},
			Entry("1987 Crash", "1987 Crash"),
			Entry("Asian Crisis", "Asian Crisis"),
			Entry("Dot-com Bubble Burst", "Dot-com Bubble Burst"),
			Entry("2008 Financial Crisis", "2008 Financial Crisis"),
			Entry("COVID-19 Pandemic", "COVID-19 Pandemic"),
		)

		It("responds with msgpack on request", func() {
			resp := post(app, "/v1/stress/", `{"event": "1987 Crash", "allocation": {"Gold": 100}}`, fiber.HeaderAccept, handler.MIMEApplicationMsgpack)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get(fiber.HeaderContentType)).To(Equal(handler.MIMEApplicationMsgpack))

			result := engine.Result{}
			Expect(msgpack.Unmarshal(readBody(resp), &result)).To(Succeed())
			Expect(result.Event.Name).To(Equal("1987 Crash"))
			Expect(result.Risk.MaxDrawDown).To(Equal(0.0))
		})

		DescribeTable("rejects bad requests",
			func(body string, status int) {
				resp := post(app, "/v1/stress/", body)
				Expect(resp.StatusCode).To(Equal(status))
			},
			Entry("malformed body", `{"event":`, fiber.StatusBadRequest),
			Entry("missing event", `{"allocation": {"Stocks": 100}}`, fiber.StatusBadRequest),
			Entry("unknown event", `{"event": "Nonexistent", "allocation": {"Stocks": 100}}`, fiber.StatusNotFound),
			Entry("weight out of range", `{"event": "1987 Crash", "allocation": {"Stocks": 101}}`, fiber.StatusBadRequest),
		)
	})

	Context("charts", func() {
		It("renders the value chart as png", func() {
			resp := post(app, "/v1/stress/chart/value", `{"event": "Dot-com Bubble Burst", "allocation": {"Technology": 50, "Bonds": 50}}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get(fiber.HeaderContentType)).To(Equal("image/png"))
			Expect(string(readBody(resp)[1:4])).To(Equal("PNG"))
		})

		It("renders the contribution chart as svg", func() {
			resp := post(app, "/v1/stress/chart/contribution?format=svg", `{"event": "Dot-com Bubble Burst", "allocation": {"Technology": 50, "Bonds": 50}}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get(fiber.HeaderContentType)).To(Equal("image/svg+xml"))
			Expect(string(readBody(resp))).To(ContainSubstring("<svg"))
		})

		It("renders the value chart with the default allocation", func() {
			resp := post(app, "/v1/stress/chart/value", `{"event": "COVID-19 Pandemic"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(readBody(resp)[1:4])).To(Equal("PNG"))
		})

		DescribeTable("rejects chart sizes out of range",
			func(query string) {
				resp := post(app, "/v1/stress/chart/contribution?"+query, `{"event": "1987 Crash", "allocation": {"Stocks": 100}}`)
				Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			},
			Entry("too wide", "width=60000"),
			Entry("too tall", "height=60000"),
			Entry("negative", "width=-5"),
		)

		It("honors a configured maximum size", func() {
			viper.Set("chart.max_width", 500)
			DeferCleanup(func() {
				viper.Set("chart.max_width", 0)
			})

			resp := post(app, "/v1/stress/chart/contribution?width=600", `{"event": "1987 Crash", "allocation": {"Stocks": 100}}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("rejects unknown formats", func() {
			resp := post(app, "/v1/stress/chart/value?format=gif", `{"event": "1987 Crash"}`)
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})
})
