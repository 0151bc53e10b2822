package handlers

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// SPAHandler, gömülü frontend build'ini servis eder.
//
// SPA routing kuralı: istenen path dist içinde gerçek bir dosyaya denk
// geliyorsa o dosya döner (JS, CSS, resimler), gelmiyorsa index.html
// döner — client-side router URL'i kendisi çözer.
type SPAHandler struct {
	fsys       fs.FS
	fileServer http.Handler
}

// NewSPAHandler, dist içeriğini saran handler oluşturur.
func NewSPAHandler(fsys fs.FS) *SPAHandler {
	return &SPAHandler{
		fsys:       fsys,
		fileServer: http.FileServer(http.FS(fsys)),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name == "" {
		name = "index.html"
	}

	if _, err := fs.Stat(h.fsys, name); err == nil {
		h.fileServer.ServeHTTP(w, r)
		return
	}

	// SPA fallback — dosya yoksa index.html dön.
	// Development modunda dist/ boş olabilir; o durumda 404 dönmek
	// "frontend'i Vite servis ediyor" demektir, hata değil.
	index, err := fs.ReadFile(h.fsys, "index.html")
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(index)
}
