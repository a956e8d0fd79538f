package devserver

import (
	"fmt"
	"strings"
)

const (
	// ReloadPath is polled by the injected script.
	ReloadPath = "/__reload__"
	// StatusPath reports the last build as JSON.
	StatusPath = "/__status__"
	// MetricsPath exposes Prometheus metrics when enabled.
	MetricsPath = "/__metrics__"

	pollIntervalMS = 1000
)

// ReloadScript is the snippet injected into served HTML pages.
var ReloadScript = fmt.Sprintf(`<script>(function(){
  if (window.__pressbuilderReload) return;
  window.__pressbuilderReload = true;
  setInterval(function(){
    fetch(%q, {cache: "no-store"}).then(function(r){ return r.text(); }).then(function(t){
      if (t.trim() === "reload") { location.reload(); }
    }).catch(function(){});
  }, %d);
})();</script>`, ReloadPath, pollIntervalMS)

// InjectReloadScript inserts ReloadScript before the last closing body tag,
// matched case-insensitively, or appends it when there is none.
func InjectReloadScript(html string) string {
	idx := lastIndexFold(html, "</body>")
	if idx == -1 {
		return html + ReloadScript
	}
	var b strings.Builder
	b.Grow(len(html) + len(ReloadScript))
	b.WriteString(html[:idx])
	b.WriteString(ReloadScript)
	b.WriteString(html[idx:])
	return b.String()
}

// lastIndexFold works on the original bytes; lowering the whole document
// first can shift offsets for non-ASCII text.
func lastIndexFold(s, sub string) int {
	for i := len(s) - len(sub); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}
