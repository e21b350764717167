//go:build js && wasm
// +build js,wasm

package main

import (
	"github.com/drummonds/goLIMS/router"
	"github.com/drummonds/goLIMS/webapp"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

func main() {
	// Register the same route table the server uses
	if err := webapp.Register(router.Default(), webapp.DefaultViews()); err != nil {
		panic(err)
	}

	// This main function is for the WASM build only
	// It initializes the go-app when running in the browser
	app.RunWhenOnBrowser()
}
