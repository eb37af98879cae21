package webui

import "net/http"

const DebugPath = "/debug/"

// Enabled reports whether the debug page should be served for env.
func Enabled(env string) bool {
	return env != "production"
}

func (webUI *WebUI) Handler() http.Handler {
	return http.HandlerFunc(webUI.debugIndexHandler)
}
