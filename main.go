package main

import (
	"bufio"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/normalize"
	"github.com/jp48185-jpg/TBS-tax-2026-checklist/pkg/store"
)

var (
	accounts   store.Store
	creds      store.CredentialStore
	sessions   *sessionManager
	normalizer *normalize.Normalizer
	jwtSecret  []byte
)

// loadDotEnv loads key=value pairs from .env if present. Real env vars win.
func loadDotEnv() {
	f, err := os.Open(".env")
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if os.Getenv(key) == "" {
			os.Setenv(key, val)
		}
	}
}

func main() {
	loadDotEnv()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-insecure-secret-change"
		log.Println("WARN JWT_SECRET not set, using insecure development secret")
	}
	jwtSecret = []byte(secret)

	initDB()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		log.Println("migration complete")
		return
	}

	sessions = newSessionManager()

	if os.Getenv("PDF_RASTER") == "off" {
		normalizer = normalize.New(nil)
		log.Println("PDF rasterization disabled, PDFs will be stored as-is")
	} else {
		normalizer = normalize.New(normalize.NewPDFRasterizer())
	}

	interval := 30 * time.Second
	if v := os.Getenv("AUTOSAVE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("WARN invalid AUTOSAVE_INTERVAL %q, keeping %s", v, interval)
		} else {
			interval = d
		}
	}
	stop := make(chan struct{})
	go sessions.runAutosave(interval, accounts, stop)

	r := gin.Default()
	setupRoutes(r)
	if err := r.Run(":8081"); err != nil {
		log.Fatal("server exited:", err)
	}
}
