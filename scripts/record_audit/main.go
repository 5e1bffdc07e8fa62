package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/noah-isme/unihelp-api/internal/repository"
	"github.com/noah-isme/unihelp-api/pkg/config"
	"github.com/noah-isme/unihelp-api/pkg/flatfile"
)

type report struct {
	Users           int
	Students        int
	Turns           int
	OrphanStudents  []string
	DuplicateBlocks []string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	storage := cfg.Storage
	flag.StringVar(&storage.DataDir, "data-dir", storage.DataDir, "Directory holding the record files")
	flag.StringVar(&storage.UsersFile, "users", storage.UsersFile, "Users file")
	flag.StringVar(&storage.StudentsFile, "students", storage.StudentsFile, "Student records file")
	flag.StringVar(&storage.ConversationsFile, "conversations", storage.ConversationsFile, "Conversation log file")
	flag.Parse()

	store, err := flatfile.NewStore(storage.DataDir, zap.NewNop())
	if err != nil {
		log.Fatalf("failed to open data dir: %v", err)
	}

	rep := audit(context.Background(), repository.NewFileStores(store, storage, zap.NewNop()))
	printReport(os.Stdout, rep)

	if len(rep.OrphanStudents) > 0 {
		os.Exit(1)
	}
}

func audit(ctx context.Context, stores repository.Stores) report {
	rep := report{
		Users: stores.Users.Count(ctx),
		Turns: stores.Conversations.Count(ctx),
	}

	seen := make(map[string]bool)
	for _, ra := range stores.Students.IDs(ctx) {
		rep.Students++
		if seen[ra] {
			rep.DuplicateBlocks = append(rep.DuplicateBlocks, ra)
			continue
		}
		seen[ra] = true
		if _, ok := stores.Users.FindByRegistrationID(ctx, ra); !ok {
			rep.OrphanStudents = append(rep.OrphanStudents, ra)
		}
	}
	return rep
}

func printReport(w io.Writer, rep report) {
	fmt.Fprintf(w, "Users: %d\n", rep.Users)
	fmt.Fprintf(w, "Student records: %d\n", rep.Students)
	fmt.Fprintf(w, "Conversation turns: %d\n", rep.Turns)
	for _, ra := range rep.DuplicateBlocks {
		fmt.Fprintf(w, "DUPLICATE student block (first one wins): %s\n", ra)
	}
	for _, ra := range rep.OrphanStudents {
		fmt.Fprintf(w, "ORPHAN student record without user: %s\n", ra)
	}
	fmt.Fprintf(w, "Orphans: %d, Duplicates: %d\n", len(rep.OrphanStudents), len(rep.DuplicateBlocks))
}
