// Package web serves the monitor page of a flash storage window.
//
// index.html is a template filled with the window the monitor was started
// for, so the page names the controller and its address range before the
// first API call returns. Everything else under dist is served as is.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
)

//go:embed dist/*
var staticAssets embed.FS

// AssetDirEnv names a directory to serve the page from instead of the
// embedded copy, so the page can be edited without rebuilding.
const AssetDirEnv = "XIPFLASH_MONITOR_DIR"

// Page is what index.html shows before it starts polling.
type Page struct {
	Controller  string
	BaseAddr    uint32
	FlashEnd    uint32
	XIPBaseAddr uint32
	NumRegions  int
	RegionSize  int
}

// Assets returns the page files, from AssetDirEnv when it is set.
func Assets() fs.FS {
	if dir, ok := os.LookupEnv(AssetDirEnv); ok && dir != "" {
		fmt.Fprintf(os.Stderr, "Serving monitor page from %s\n", dir)
		return os.DirFS(dir)
	}

	sub, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return sub
}

// Handler serves the page for the window page returns. page is called per
// request so controllers registered after the handler is built still show.
func Handler(page func() Page) http.Handler {
	assets := Assets()
	files := http.FileServer(http.FS(assets))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" && r.URL.Path != "/index.html" {
			files.ServeHTTP(w, r)
			return
		}

		body, err := render(assets, page())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
}

func render(assets fs.FS, p Page) ([]byte, error) {
	tmpl, err := template.New("index.html").
		Funcs(template.FuncMap{"hex": hexAddr}).
		ParseFS(assets, "index.html")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func hexAddr(addr uint32) string {
	return fmt.Sprintf("0x%08x", addr)
}
