package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
)

// Root restores a cached session, starts the connectivity watcher and runs
// the REPL on stdin until the user exits.
func (a *App) Root(ctx context.Context) {
	log.Println("Welcome to InsightDesk CLI (type 'help' for commands)")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.restoreSession(ctx)
	a.checkOnline(ctx)

	go a.StartOnlineStatusWatcher(ctx, onlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}

func (a *App) restoreSession(ctx context.Context) {
	s, err := a.authService.CachedSession(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrNotSignedIn) {
			log.Printf("reading local session: %v", err)
		}
		return
	}
	a.setUser(s.User.Email)
	fmt.Fprintf(a.out, "Signed in as %s\n", displayName(s.User))
}
