package main

import (
  "fmt"
  "os"

  "github.com/joho/godotenv"

  "github.com/edpsychconnect/backend/internal/app"
)

func main() {
  // Missing .env is fine in containers; config falls back to real env vars.
  _ = godotenv.Load()

  a, err := app.New()
  if err != nil {
    fmt.Printf("Failed to start: %v\n", err)
    os.Exit(1)
  }
  defer a.Close()

  a.Log.Info("Starting server", "port", a.Cfg.Port)
  if err := a.Run(); err != nil {
    a.Log.Fatal("Server exited", "error", err)
  }
}
