package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler はビルド済みのシングルページアプリケーションを配信する。
// 実ファイルが存在するパスはそのまま配信し、存在しないパスはindex.htmlに
// フォールバックする（クライアントサイドルーティング対応）。
type SPAHandler struct {
	staticDir string
}

// NewSPAHandler はSPAHandlerを生成する。
func NewSPAHandler(staticDir string) *SPAHandler {
	return &SPAHandler{staticDir: staticDir}
}

// ServeHTTP はhttp.Handlerを実装する。
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// パストラバーサルを遮断する
	cleaned := filepath.Clean(r.URL.Path)
	if strings.Contains(cleaned, "..") {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	path := filepath.Join(h.staticDir, cleaned)

	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
}
