package dotenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Load читает .env (или файл из --env-file) и применяет переопределения из флагов.
// Отсутствующий .env не ошибка: в контейнере переменные приходят из окружения.
func Load() error {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "Path to dotenv file")
	portFlag := flags.String("port", "", "Server port (overrides PORT environment variable)")
	storageFlag := flags.String("storage", "", "Storage driver: postgres or memory (overrides STORAGE_DRIVER)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	overrides := map[string]string{
		"PORT":           *portFlag,
		"STORAGE_DRIVER": *storageFlag,
	}
	for key, value := range overrides {
		if value == "" {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s environment variable: %w", key, err)
		}
	}
	return nil
}
