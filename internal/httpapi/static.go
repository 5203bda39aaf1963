package httpapi

import "net/http"

// indexHTML is the static status page served at the root path. It exists so
// a browser hitting the service sees something friendlier than a 404.
const indexHTML = `<!DOCTYPE html>
<html lang="pl">
<head>
<meta charset="utf-8">
<title>Poczytajmy backend</title>
<style>
body { font-family: sans-serif; margin: 4em auto; max-width: 38em; color: #333; }
code { background: #f4f4f4; padding: 0.1em 0.3em; border-radius: 3px; }
</style>
</head>
<body>
<h1>Poczytajmy backend</h1>
<p>Serwer działa. API dla aplikacji do nauki czytania.</p>
<ul>
<li><code>GET /health</code> — status serwisu</li>
<li><code>POST /asr</code> — rozpoznawanie mowy</li>
<li><code>POST /agent/generate-greeting</code> — powitanie</li>
<li><code>POST /agent/motivate</code> — wiadomość motywacyjna</li>
<li><code>POST /agent/generate-text</code> — zdanie do czytania</li>
<li><code>POST /ocr</code> — rozpoznawanie tekstu ze zdjęcia</li>
<li><code>POST /tts</code> — synteza mowy</li>
</ul>
</body>
</html>
`

// handleIndex serves GET / with the static status page.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(indexHTML))
}
