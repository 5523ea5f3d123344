package swagger

import (
	_ "embed"
	"net/http"
)

//go:embed events.swagger.json
var eventsSpec []byte

// Register добавляет маршрут GET /swagger.json с OpenAPI описанием ресурса /events
func Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /swagger.json", ServeSpec)
}

// ServeSpec отдает встроенный OpenAPI документ
func ServeSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(eventsSpec)
}
