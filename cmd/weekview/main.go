// Command weekview prints the content calendar for one week from seeded demo
// posts, in grid or list mode.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/staysocial/staysocial-backend/internal/calendar"
	"github.com/staysocial/staysocial-backend/internal/db"
	"github.com/staysocial/staysocial-backend/internal/posts"
	"go.uber.org/zap"
)

func main() {
	var (
		anchorFlag string
		platform   string
		postType   string
		seed       int64
		days       int
		listMode   bool
		tz         string
	)
	flag.StringVar(&anchorFlag, "anchor", "", "anchor date YYYY-MM-DD (default today)")
	flag.StringVar(&platform, "platform", "all", "platform filter: all | instagram | facebook | twitter | linkedin")
	flag.StringVar(&postType, "type", "all", "post type filter, e.g. promotion, event, menu")
	flag.Int64Var(&seed, "seed", 42, "demo data seed; 0 seeds from the clock")
	flag.IntVar(&days, "days", 14, "days of demo posts to generate from the anchor's week start")
	flag.BoolVar(&listMode, "list", false, "print the chronological list instead of the week grid")
	flag.StringVar(&tz, "tz", "Local", "IANA time zone for dates")
	flag.Parse()

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Fatalf("invalid -tz: %v", err)
	}

	now := time.Now().In(loc)
	anchor := now
	if anchorFlag != "" {
		if anchor, err = calendar.ParseDateKey(anchorFlag, loc); err != nil {
			log.Fatalf("invalid -anchor %q: want YYYY-MM-DD", anchorFlag)
		}
	}

	ctx := context.Background()
	snap, err := demoSnapshot(ctx, anchor, seed, days)
	if err != nil {
		log.Fatalf("build demo data: %v", err)
	}

	filters := calendar.Filters{Platform: strings.ToLower(platform), Type: strings.ToLower(postType)}
	if listMode {
		printList(os.Stdout, calendar.Flatten(snap, filters))
		return
	}
	printWeek(os.Stdout, calendar.BuildWeek(snap, anchor, filters, now))
}

// demoSnapshot seeds an in-memory database the way the API server does and
// reads it back as a calendar snapshot
func demoSnapshot(ctx context.Context, anchor time.Time, seed int64, days int) (calendar.Snapshot, error) {
	logger := zap.NewNop().Sugar()
	database := db.NewInMemoryDatabase(logger)
	if err := db.ConnectAndMigrate(ctx, database, db.AllSchemas()); err != nil {
		return nil, err
	}
	defer database.Disconnect(ctx)

	svc := posts.NewService(database, nil, nil, logger)
	start := calendar.ComputeWeekWindow(anchor).Start
	if _, err := svc.Seed(ctx, posts.NewSeeder(seed).Drafts(start, days)); err != nil {
		return nil, err
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.Snapshot(snap), nil
}

func printWeek(out io.Writer, week calendar.WeekView) {
	fmt.Fprintf(out, "Week of %s - %s\n\n", week.Start.Format("Jan 2"), week.End.Format("Jan 2, 2006"))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, day := range week.Days {
		marker := ""
		if day.IsToday {
			marker = " (today)"
		}
		fmt.Fprintf(w, "%s%s\t\t\t\n", day.Date.Format("Mon Jan 2"), marker)
		if len(day.Posts) == 0 {
			fmt.Fprintf(w, "  -\t\t\t\n")
		}
		for _, p := range day.Posts {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", p.ScheduledTime, p.Platform, p.Status, p.Title)
		}
	}
	w.Flush()
}

func printList(out io.Writer, entries []calendar.ListEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No posts match the filters.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTIME\tPLATFORM\tTYPE\tSTATUS\tTITLE")
	for _, e := range entries {
		p := e.Post
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Date, p.ScheduledTime, p.Platform, p.Type, p.Status, p.Title)
	}
	w.Flush()
}
