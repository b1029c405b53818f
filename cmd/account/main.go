// Command account provisions a password account in the server database.
//
//	DATABASE_URL=postgres://... account -email alice@example.com -name Alice
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/flagx"
	"github.com/dmitrijs2005/insightdesk/internal/promptx"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

func main() {
	var dsn, email, name string
	flagx.EnvString(&dsn, "DATABASE_URL")
	flag.StringVar(&dsn, "d", dsn, "database DSN")
	flag.StringVar(&email, "email", "", "account email")
	flag.StringVar(&name, "name", "", "display name")
	flag.Parse()

	if dsn == "" || email == "" {
		flag.Usage()
		os.Exit(2)
	}

	pw, err := promptx.NewPassword(os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer common.WipeByteArray(pw)

	ctx := context.Background()
	db, err := repomanager.OpenDB(ctx, dsn)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	a, err := services.NewProvisioner(db, rm).CreateAccount(ctx, email, name, string(pw))
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Printf("created account %s (%s)\n", a.Email, a.ID)
}
