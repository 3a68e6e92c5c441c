package postgres

import (
	"fmt"

	"github.com/GoSim-25-26J-441/topology-backend/config"
)

// DSN returns cfg.DSN when set, otherwise builds a keyword/value DSN that
// both pgx and lib/pq accept.
func DSN(cfg *config.DatabaseConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name,
	)
}
