package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atlasgame/go-server/internal/countries"
	"github.com/atlasgame/go-server/internal/geo"
	"github.com/atlasgame/go-server/internal/httpserver"
	"github.com/atlasgame/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := countries.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load country catalog")
	}

	db, err := openDB(getEnv("DATABASE_PATH", "./data/atlas.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	mem := store.NewMemoryStore()
	src := geo.NewSource(geo.NewClient())
	srv := httpserver.New(mem, src, db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting atlas-go server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
