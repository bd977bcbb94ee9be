package main

import (
	"context"

	"github.com/shandysiswandi/gocrypt/internal/app"
)

// @title           GoCrypt API
// @version         1.0
// @description     GoCrypt hashes and verifies credentials on behalf of an external credential store.
// @contact.name    Contact Support
// @contact.url     https://github.com/shandysiswandi/gocrypt
// @license.name    MIT
// @license.url     https://mit-license.org/
// @server          http://localhost:8080
func main() {
	application := app.New()
	<-application.Start()

	ctx, cancel := context.WithTimeout(context.Background(), application.ShutdownTimeout())
	defer cancel()
	application.Stop(ctx)
}
