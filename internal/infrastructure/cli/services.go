package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/felixgeelhaar/pulse/internal/infrastructure/config"
	"github.com/felixgeelhaar/pulse/internal/infrastructure/wiring"
)

var configPath string

// loadServices builds the full service set from the configured store. A
// provider fallback is reported on stderr but does not block the command.
func loadServices(ctx context.Context) (*wiring.AppServices, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	services, err := wiring.BuildAppServices(ctx, cfg)
	if services != nil && err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return services, nil
	}
	return services, err
}

// printJSON renders a report for the terminal.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
