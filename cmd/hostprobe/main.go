// Command hostprobe prints the live status of a Dominions game host.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/domtracker/internal/gamehost"
	"github.com/freeeve/domtracker/pkg/dominions"
)

func main() {
	address := flag.String("address", "", "game host address (host:port)")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	asJSON := flag.Bool("json", false, "print the raw snapshot as JSON")
	watch := flag.Duration("watch", 0, "poll at this interval and print each new turn")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	if *address == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	client := gamehost.NewClient(*timeout)
	emit := func(game dominions.GameData) error {
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(game)
		}
		return render(os.Stdout, game)
	}

	game, err := client.GameData(ctx, *address)
	if err != nil {
		log.Fatal().Err(err).Str("address", *address).Msg("Fetch failed")
	}
	if err := emit(game); err != nil {
		log.Fatal().Err(err).Msg("Write failed")
	}
	if *watch <= 0 {
		return
	}

	var state dominions.GameServerState = dominions.StartedServer{
		Started: dominions.StartedState{Address: *address, LastSeenTurn: game.Turn},
	}
	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		game, err := client.GameData(ctx, *address)
		if err != nil {
			log.Warn().Err(err).Msg("Fetch failed")
			continue
		}
		next, advanced := dominions.AdvanceTurn(state, game.Turn)
		if !advanced {
			log.Debug().Int("turn", game.Turn).Msg("No new turn")
			continue
		}
		state = next
		if err := emit(game); err != nil {
			log.Fatal().Err(err).Msg("Write failed")
		}
	}
}

// render writes a header line and one row per nation the host reports.
func render(w io.Writer, game dominions.GameData) error {
	hours, minutes := game.TimeRemaining()
	if game.Uploading() {
		fmt.Fprintf(w, "%s: uploading pretenders (%dh %dm left)\n", game.GameName, hours, minutes)
	} else {
		fmt.Fprintf(w, "%s: turn %d (%dh %dm left)\n", game.GameName, game.Turn, hours, minutes)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNATION\tSTATUS\tTURN")
	for _, e := range dominions.StartedRoster(nil, game).Entries {
		submitted := "-"
		if e.SubmissionKnown {
			submitted = e.Submission.String()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", e.Nation.ID, e.Nation.Name, e.Status, submitted)
	}
	return tw.Flush()
}
