package main

import (
	"context"
	"flag"
	"log"

	"agora/adapters/excel"
	"agora/adapters/postgres"
	"agora/domain/debate"
	"agora/domain/tally"
	"agora/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	out := flag.String("out", "debate_results.xlsx", "output xlsx path")
	limit := flag.Int("limit", 500, "maximum number of debates to export")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	debateRepo := postgres.NewDebateRepository(db)
	voteRepo := postgres.NewVoteRepository(db)

	ctx := context.Background()
	completed, err := debateRepo.ListDebates(ctx, debate.StatusCompleted, *limit)
	if err != nil {
		log.Fatalf("Failed to list completed debates: %v", err)
	}

	rows := make([]excel.DebateRow, 0, len(completed))
	for _, d := range completed {
		forVotes, againstVotes, err := voteRepo.CountVotesBySide(ctx, d.ID)
		if err != nil {
			log.Fatalf("Failed to tally debate %s: %v", d.ID, err)
		}
		rows = append(rows, excel.DebateRow{Debate: d, Result: tally.Compute(forVotes, againstVotes)})
	}

	writer := excel.NewResultsWriter()
	if err := writer.Write(*out, rows); err != nil {
		log.Fatalf("Failed to write results workbook: %v", err)
	}
	log.Printf("Exported %d completed debates to %s", len(rows), *out)
}
