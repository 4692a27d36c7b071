// Package main provides a tool to seed the database with sample papers.
//
// Usage:
//
//	DB_PATH=~/PaperManager/papers.db go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kouichiii/paper-manager/internal/domain"
	"github.com/kouichiii/paper-manager/internal/store/sqlite"
)

type samplePaper struct {
	title   string
	authors string
	year    int
	url     string
	status  domain.Status
	tags    []string
}

var samples = []samplePaper{
	{
		title:   "Attention Is All You Need",
		authors: "Vaswani, Shazeer, Parmar, Uszkoreit, Jones, Gomez, Kaiser, Polosukhin",
		year:    2017,
		url:     "https://arxiv.org/abs/1706.03762",
		status:  domain.StatusDone,
		tags:    []string{"ml", "nlp"},
	},
	{
		title:   "In Search of an Understandable Consensus Algorithm",
		authors: "Ongaro, Ousterhout",
		year:    2014,
		url:     "https://raft.github.io/raft.pdf",
		status:  domain.StatusReading,
		tags:    []string{"distributed-systems", "consensus"},
	},
	{
		title:   "Dynamo: Amazon's Highly Available Key-value Store",
		authors: "DeCandia et al.",
		year:    2007,
		url:     "https://www.allthingsdistributed.com/files/amazon-dynamo-sosp2007.pdf",
		status:  domain.StatusDone,
		tags:    []string{"distributed-systems", "storage"},
	},
	{
		title:   "The QUIC Transport Protocol: Design and Internet-Scale Deployment",
		authors: "Langley et al.",
		year:    2017,
		url:     "https://dl.acm.org/doi/10.1145/3098822.3098842",
		status:  domain.StatusUnread,
		tags:    []string{"net"},
	},
	{
		title:   "Spanner: Google's Globally-Distributed Database",
		authors: "Corbett et al.",
		year:    2012,
		url:     "https://research.google/pubs/pub39966/",
		status:  domain.StatusUnread,
		tags:    []string{"distributed-systems", "storage"},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		dbPath = filepath.Join(home, "PaperManager", "papers.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	for _, sample := range samples {
		year := sample.year
		paper := &domain.Paper{
			Title:     sample.title,
			Authors:   sample.authors,
			PubYear:   &year,
			URL:       sample.url,
			Status:    domain.StatusUnread,
			CreatedAt: time.Now().UTC(),
		}

		if err := st.CreatePaper(ctx, paper); err != nil {
			log.Fatalf("Failed to create paper %q: %v", sample.title, err)
		}

		if sample.status != domain.StatusUnread {
			if _, err := st.SetPaperStatus(ctx, paper.ID, sample.status); err != nil {
				log.Fatalf("Failed to set status for %q: %v", sample.title, err)
			}
		}

		for _, tag := range sample.tags {
			if _, err := st.AddPaperTag(ctx, paper.ID, tag); err != nil {
				log.Fatalf("Failed to tag %q with %q: %v", sample.title, tag, err)
			}
		}

		fmt.Printf("Seeded: %s (id=%d, status=%s, tags=%v)\n", sample.title, paper.ID, sample.status, sample.tags)
	}

	fmt.Printf("\nDone. Seeded %d papers.\n", len(samples))
}
