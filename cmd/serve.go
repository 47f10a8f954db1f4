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
package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/penny-vault/pv-stress/common"
	"github.com/penny-vault/pv-stress/engine"
	"github.com/penny-vault/pv-stress/middleware"
	"github.com/penny-vault/pv-stress/observability/opentelemetry"
	"github.com/penny-vault/pv-stress/router"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	bindFlag("server.port", "PORT", serveCmd.Flags().Lookup("port"))

	serveCmd.Flags().StringSlice("cors-origins", []string{"http://localhost:8080"}, "Origins allowed to make cross-origin requests")
	bindFlag("server.cors_origins", "PVSTRESS_CORS_ORIGINS", serveCmd.Flags().Lookup("cors-origins"))

	// Cache
	serveCmd.Flags().Int("cache-local-size", 256, "Number of responses held in the in-process cache")
	bindFlag("cache.local_size", "", serveCmd.Flags().Lookup("cache-local-size"))

	serveCmd.Flags().Bool("cache-redis", false, "Use redis as a second level cache")
	bindFlag("cache.redis", "PVSTRESS_CACHE_REDIS", serveCmd.Flags().Lookup("cache-redis"))

	serveCmd.Flags().String("cache-redis-url", "redis://localhost:6379/0", "Redis connection URL")
	bindFlag("cache.redis_url", "REDIS_URL", serveCmd.Flags().Lookup("cache-redis-url"))

	serveCmd.Flags().Int("cache-ttl", 86400, "Seconds a response is kept in redis")
	bindFlag("cache.ttl", "", serveCmd.Flags().Lookup("cache-ttl"))

	serveCmd.Flags().Duration("cache-purge-interval", 6*time.Hour, "How often the in-process cache is emptied")
	bindFlag("cache.purge_interval", "", serveCmd.Flags().Lookup("cache-purge-interval"))

	// Tracing
	serveCmd.Flags().Bool("otlp-enabled", false, "Export traces to an OpenTelemetry collector")
	bindFlag("otlp.enabled", "PVSTRESS_OTLP_ENABLED", serveCmd.Flags().Lookup("otlp-enabled"))

	serveCmd.Flags().String("otlp-endpoint", "localhost:4317", "OpenTelemetry collector endpoint")
	bindFlag("otlp.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT", serveCmd.Flags().Lookup("otlp-endpoint"))

	serveCmd.Flags().Bool("otlp-http", false, "Connect to the collector with HTTP(s) instead of gRPC")
	bindFlag("otlp.http", "", serveCmd.Flags().Lookup("otlp-http"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pvstress server",
	Long:  `Run HTTP server that implements the stress test API`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output file")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start cpu profile")
			}
			defer pprof.StopCPUProfile()
		}

		if err := common.SetupCache(); err != nil {
			log.Fatal().Err(err).Msg("could not setup cache")
		}

		if viper.GetBool("otlp.enabled") {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not setup opentelemetry")
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("failed to flush traces")
				}
			}()
		}

		// build the return series before the first request arrives
		returns := engine.BuildReturnSeries()
		log.Info().Int("NumPeriods", returns.Len()).Int("NumAssets", returns.ColCount()).Msg("initialized return series")

		app := newApp()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			log.Info().Str("Signal", sig.String()).Msg("shutting down")
			if err := app.Shutdown(); err != nil {
				log.Error().Err(err).Msg("server shutdown failed")
			}
		}()

		// Periodically empty the local cache
		scheduler := gocron.NewScheduler(time.UTC)
		if _, err := scheduler.Every(viper.GetDuration("cache.purge_interval")).Do(common.CachePurge); err != nil {
			log.Fatal().Err(err).Msg("could not schedule cache purge")
		}
		scheduler.StartAsync()
		defer scheduler.Stop()

		port := viper.GetString("server.port")
		log.Info().Str("Port", port).Msg("starting server")
		if err := app.Listen(":" + port); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	},
}

// newApp creates the fiber application with its middleware and routes
func newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "pvstress",
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	})

	// Configure CORS
	corsConfig := cors.Config{
		AllowOrigins: strings.Join(viper.GetStringSlice("server.cors_origins"), ", "),
		AllowHeaders: "*",
		AllowMethods: "GET,POST,HEAD",
	}
	app.Use(cors.New(corsConfig))

	// turn handler panics into 500 responses
	app.Use(recover.New())

	// Setup request id and logging middleware
	app.Use(middleware.NewRequestID())
	app.Use(middleware.NewLogger())

	// Setup routes
	router.SetupRoutes(app)

	return app
}
