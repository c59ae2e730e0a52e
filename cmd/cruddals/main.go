// Command cruddals prints the API schema of a model file and creates its
// database tables.
//
//	cruddals sdl models.yaml -o schema.graphql
//	cruddals sdl --config cruddals.yaml --watch -o schema.graphql
//	cruddals migrate --dialect sqlite --dsn "file:shop.db?_pragma=foreign_keys(1)" models.yaml
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
