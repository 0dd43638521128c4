package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/josh-kwaku/invoicing/internal/auth"
	"github.com/josh-kwaku/invoicing/internal/logging"
)

type tokenConfig struct {
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`
}

// admin-token mints a bearer token for the back-office invoice view.
func main() {
	name := flag.String("name", "operator", "operator name recorded in the token")
	id := flag.String("id", "", "operator id (uuid); a random one is used when empty")
	ttl := flag.Duration("ttl", 12*time.Hour, "token lifetime")
	flag.Parse()

	logging.Init("admin-token", "warn", "development")

	_ = godotenv.Load()
	cfg, err := env.ParseAs[tokenConfig]()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	operatorID := uuid.New()
	if *id != "" {
		operatorID, err = uuid.Parse(*id)
		if err != nil {
			slog.Error("invalid operator id", "id", *id, "error", err)
			os.Exit(1)
		}
	}

	token, err := auth.GenerateToken(operatorID, *name, cfg.JWTSecret, *ttl)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
