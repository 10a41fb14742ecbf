package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/erp/manufacturing/internal/domain/shared"
	"github.com/erp/manufacturing/internal/infrastructure/auth"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"github.com/erp/manufacturing/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// token prints a bearer token for one actor and role, signed with the
// configured JWT secret.
func main() {
	var (
		actorID = flag.String("actor", "", "Actor ID (UUID); a random one is generated when empty")
		role    = flag.String("role", "", "Role: admin, production, fulfillment, viewer")
		name    = flag.String("name", "", "Display name carried in the token")
		ttl     = flag.Duration("ttl", 0, "Token lifetime; the configured expiration is used when zero")
	)
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "warn", Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	parsedRole, err := shared.ParseRole(*role)
	if err != nil {
		log.Fatal("Invalid role", zap.String("role", *role), zap.Error(err))
	}

	id := uuid.New()
	if *actorID != "" {
		if id, err = uuid.Parse(*actorID); err != nil {
			log.Fatal("Invalid actor ID", zap.String("actor", *actorID), zap.Error(err))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	token, expiresAt, err := auth.NewJWTService(cfg.JWT).Issue(auth.IssueInput{
		ActorID: id,
		Role:    parsedRole,
		Name:    *name,
		TTL:     *ttl,
	})
	if err != nil {
		log.Fatal("Failed to issue token", zap.Error(err))
	}

	fmt.Fprintf(os.Stderr, "actor=%s role=%s expires=%s\n", id, parsedRole, expiresAt.Format(time.RFC3339))
	fmt.Println(token)
}
