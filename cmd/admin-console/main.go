// main.go — точка входа Admin Console.
// Команды и их зависимости собирает пакет cli; здесь только контекст
// процесса и код выхода.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bigkaa/goartstore/admin-console/internal/cli"
)

func main() {
	// 1. Контекст процесса: отменяется по SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// 2. Разбор флагов и выполнение команды
	code := cli.Execute(ctx)

	stop()
	os.Exit(code)
}
