// feature-ping — CLI утилита для диагностики доступности FeatMill платформы и S3.
//
// Использование:
//
//	./feature-ping
//
// config.yaml должен находиться рядом с бинарником.
// Если config не найден — утилита падает с ошибкой.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ilkoid/featmill/pkg/config"
	"github.com/ilkoid/featmill/pkg/featmill"
	"github.com/ilkoid/featmill/pkg/s3storage"
	"github.com/ilkoid/featmill/pkg/utils"
)

// Version — версия утилиты (заполняется при сборке)
var Version = "dev"

func main() {
	// 1. Инициализируем логгер
	if err := utils.InitLogger(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logger: %v\n", err)
	}
	defer utils.Close()

	utils.Info("Starting feature-ping", "version", Version)

	// 2. Грузим конфиг
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from %s: %v\n", configPath, err)
		utils.Error("Config loading failed", "path", configPath, "error", err)
		os.Exit(1)
	}

	utils.Info("Config loaded", "path", configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	exitCode := 0

	// 3. Пингуем платформу
	fmt.Println("🔍 Checking FeatMill platform...")
	client, err := featmill.NewFromConfig(cfg.FeatMill)
	if err != nil {
		fmt.Printf("  ❌ client init: %v\n", err)
		os.Exit(1)
	}

	if client.IsDemoKey() {
		fmt.Println("  ⚠️  demo key detected — platform calls will not be authorized")
	}

	start := time.Now()
	resp, err := client.Ping(ctx)
	if err != nil {
		errType := client.ClassifyError(err)
		fmt.Printf("  ❌ platform: %v\n", err)
		fmt.Printf("     %s\n", errType.HumanMessage())
		utils.Error("Platform ping failed", "error", err, "type", errType.String())
		exitCode = 1
	} else {
		fmt.Printf("  ✅ platform: %s (server ts: %s, %s)\n", resp.Status, resp.TS, time.Since(start).Round(time.Millisecond))
		utils.Info("Platform ping OK", "duration_ms", time.Since(start).Milliseconds())
	}

	// 4. Пингуем S3 staging (только если сконфигурирован)
	if cfg.S3.Endpoint != "" {
		fmt.Println("🔍 Checking S3 staging...")
		s3client, err := s3storage.New(cfg.S3)
		if err != nil {
			fmt.Printf("  ❌ s3 init: %v\n", err)
			exitCode = 1
		} else if err := s3client.Ping(ctx); err != nil {
			fmt.Printf("  ❌ s3: %v\n", err)
			utils.Error("S3 ping failed", "error", err)
			exitCode = 1
		} else {
			fmt.Printf("  ✅ s3: bucket %q reachable\n", cfg.S3.Bucket)
		}
	} else {
		fmt.Println("ℹ️  S3 staging not configured, skipping")
	}

	if exitCode == 0 {
		fmt.Println("✅ All checks passed")
	}
	os.Exit(exitCode)
}
