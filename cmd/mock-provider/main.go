package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/josh-kwaku/invoicing/internal/logging"
)

// The mock answers PayPal's IPN validation endpoint. A notification whose
// custom field starts with "invalid" is answered INVALID, everything else
// VERIFIED.
func main() {
	logging.Init("mock-provider", "info", os.Getenv("APP_ENV"))

	addr := os.Getenv("MOCK_PROVIDER_ADDR")
	if addr == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})
	mux.HandleFunc("POST /cgi-bin/webscr", handleValidate)

	slog.Info("mock provider started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	values, err := url.ParseQuery(string(body))
	if err != nil || values.Get("cmd") != "_notify-validate" {
		slog.Warn("rejecting validation request", "error", err, "cmd", values.Get("cmd"))
		writeText(w, "INVALID")
		return
	}

	reply := "VERIFIED"
	if strings.HasPrefix(values.Get("custom"), "invalid") {
		reply = "INVALID"
	}
	slog.Info("validation request answered",
		"custom", values.Get("custom"),
		"txn_type", values.Get("txn_type"),
		"user_agent", r.UserAgent(),
		"reply", reply,
	)
	writeText(w, reply)
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := io.WriteString(w, s); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
