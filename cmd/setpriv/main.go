// Command setpriv grants or revokes account privileges, or lists the
// accounts and what they hold.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rodaine/table"

	"github.com/cory-johannsen/tale/internal/config"
	"github.com/cory-johannsen/tale/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file")
	name := flag.String("name", "", "target account name")
	priv := flag.String("priv", postgres.PrivilegeWizard, "privilege to grant or revoke")
	revoke := flag.Bool("revoke", false, "revoke the privilege instead of granting it")
	list := flag.Bool("list", false, "list accounts and their privileges")
	flag.Parse()

	if *name == "" && !*list {
		flag.Usage()
		os.Exit(1)
	}
	if !postgres.ValidPrivilege(*priv) {
		log.Fatalf("invalid privilege %q: must be %s", *priv, postgres.PrivilegeWizard)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool.DB())

	if *list {
		accounts, err := repo.List(ctx)
		if err != nil {
			log.Fatalf("listing accounts: %v", err)
		}
		printAccounts(os.Stdout, accounts)
		return
	}

	verb := "granted"
	if *revoke {
		verb = "revoked"
		err = repo.Revoke(ctx, *name, *priv)
	} else {
		err = repo.Grant(ctx, *name, *priv)
	}
	if err != nil {
		log.Fatalf("updating %q: %v", *name, err)
	}
	fmt.Fprintf(os.Stdout, "%s %s for %s [%s]\n", verb, *priv, *name, time.Since(start))
}

// printAccounts writes one row per account.
func printAccounts(w io.Writer, accounts []postgres.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(w, "No accounts found.")
		return
	}
	t := table.New("Name", "Privileges", "Created", "Last Login").WithWriter(w)
	for _, a := range accounts {
		last := "never"
		if a.LoggedInAt != nil {
			last = a.LoggedInAt.Format("2006-01-02 15:04")
		}
		t.AddRow(a.Name, strings.Join(a.Privileges, ","), a.CreatedAt.Format("2006-01-02"), last)
	}
	t.Print()
}
