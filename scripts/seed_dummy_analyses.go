// Dev utility: seeds a handful of dummy analyses for a user so the history
// endpoint and the dashboard have something to show. Cleanup removes only the
// rows this script created, identified by a marker inside ai_analysis.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type seedAnalysis struct {
	Role     string
	Message  string
	Contexto string
	Flags    []string
}

var seedData = []seedAnalysis{
	{
		Role:     "crush",
		Message:  "hey, he estado ocupado últimamente",
		Contexto: "Mensaje breve que mantiene la puerta abierta sin comprometerse.",
		Flags:    []string{"🟨 Yellow flag: respuesta vaga sin propuesta concreta"},
	},
	{
		Role:     "ex",
		Message:  "vi esto y me acordé de ti",
		Contexto: "Intento suave de retomar contacto apelando a la nostalgia.",
		Flags:    []string{"🟨 Yellow flag: reaparición sin contexto", "🟩 Green flag: tono amable"},
	},
	{
		Role:     "pareja",
		Message:  "si sales con tus amigas es porque no me quieres",
		Contexto: "Condiciona el afecto a renunciar a la vida social propia.",
		Flags:    []string{"🚩 Red flag: chantaje emocional"},
	},
}

const seedMarker = "seed_dummy_analyses"

func main() {
	var (
		mode     string
		userID   string
		database string
	)

	flag.StringVar(&mode, "mode", "seed", "seed or cleanup")
	flag.StringVar(&userID, "user-id", "", "owner user id (required)")
	flag.StringVar(&database, "database-url", os.Getenv("DATABASE_URL"), "postgres connection url")
	flag.Parse()

	if strings.TrimSpace(userID) == "" {
		log.Fatal("user-id is required")
	}
	if strings.TrimSpace(database) == "" {
		log.Fatal("database-url is required (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, database)
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}
	defer conn.Close(ctx)

	switch mode {
	case "seed":
		if err := seed(ctx, conn, userID); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	case "cleanup":
		if err := cleanup(ctx, conn, userID); err != nil {
			log.Fatalf("cleanup failed: %v", err)
		}
	default:
		log.Fatalf("unknown mode %q", mode)
	}
}

func seed(ctx context.Context, conn *pgx.Conn, userID string) error {
	for offset, item := range seedData {
		analysis := map[string]any{
			"contexto":              item.Contexto,
			"flags":                 item.Flags,
			"abuso_detectado":       strings.Contains(strings.Join(item.Flags, " "), "🚩"),
			"recomendacion_final":   "Observa el patrón antes de responder.",
			"sugerencias_respuesta": []string{"Gracias por escribir, lo pienso y te digo."},
			"seed_tag":              seedMarker,
		}
		analysisJSON, err := json.Marshal(analysis)
		if err != nil {
			return err
		}
		createdAt := time.Now().UTC().Add(-time.Duration(offset) * time.Hour)
		if _, err := conn.Exec(
			ctx,
			`INSERT INTO analyses (id, user_id, role, original_message, ai_analysis, chat_history, created_at)
			 VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, $6)`,
			uuid.NewString(),
			userID,
			item.Role,
			item.Message,
			analysisJSON,
			createdAt,
		); err != nil {
			return err
		}
	}
	fmt.Printf("seeded %d analyses for user %s\n", len(seedData), userID)
	return nil
}

func cleanup(ctx context.Context, conn *pgx.Conn, userID string) error {
	tag, err := conn.Exec(
		ctx,
		`DELETE FROM analyses WHERE user_id = $1 AND ai_analysis->>'seed_tag' = $2`,
		userID,
		seedMarker,
	)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d seeded analyses for user %s\n", tag.RowsAffected(), userID)
	return nil
}
