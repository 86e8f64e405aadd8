// listopps prints a quick table of the opportunities the public listing would
// return, for operators checking what is live.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/vidyarthi-platform/opportunity-hub/internal/config"
	"github.com/vidyarthi-platform/opportunity-hub/internal/db"
	"github.com/vidyarthi-platform/opportunity-hub/internal/logger"
)

func main() {
	segment := flag.String("segment", "", "filter by segment tag")
	category := flag.String("category", "", "filter by category")
	search := flag.String("q", "", "free-text search")
	limit := flag.Int("limit", 24, "result limit")
	flag.Parse()

	cfg, err := config.Load(config.GetEnv())
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(config.GetEnv(), "warn")
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source, err := db.Connect(ctx, cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatal(err)
	}

	store := db.NewStore(source, zlog)
	result, err := store.ListOpportunities(ctx, db.ListOptions{
		Segment:  *segment,
		Category: *category,
		Search:   *search,
		Limit:    *limit,
	})
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Organizer", "State", "Deadline", "Status"})

	for _, opp := range result.Opportunities {
		deadline := opp.RegistrationDeadline
		if opp.RegistrationDeadlineTBD {
			deadline = "TBD"
		}
		t.AppendRow(table.Row{opp.ID, opp.Title, opp.Category, opp.Organizer, opp.State, deadline, opp.Status})
	}
	t.Render()

	log.Printf("%d opportunities across %d segments", len(result.Opportunities), len(result.Segments))
}
