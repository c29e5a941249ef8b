package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/akalniens/keepsync/internal/app"
	"github.com/akalniens/keepsync/internal/config"
	"github.com/akalniens/keepsync/internal/flagx"
	"github.com/akalniens/keepsync/internal/scheduler"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	args := flagx.FilterArgs(os.Args[1:], []string{"-now", "-token"})
	fs := flag.NewFlagSet("keepsync", flag.ContinueOnError)
	now := fs.Bool("now", false, "run one sync cycle and exit")
	token := fs.String("token", "", "identity token (JWT)")
	if err := fs.Parse(args); err != nil {
		log.Printf("%v", err)
		return
	}

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if *token != "" {
		if err := a.SignIn(*token); err != nil {
			log.Printf("sign-in failed: %v", err)
			return
		}
	}

	if *now {
		sum, err := a.SyncNow(ctx, func(p scheduler.Progress) {
			if p.Collection != "" {
				fmt.Printf("%s %s: %d\n", p.Phase, p.Collection, p.Count)
			} else {
				fmt.Printf("%s\n", p.Phase)
			}
		})
		if err != nil {
			log.Printf("sync finished with errors: %v", err)
		}
		fmt.Printf("pushed %d, pulled %d\n", sum.Pushed, sum.Pulled)
		return
	}

	a.Run(ctx)
}
