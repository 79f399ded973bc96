package core

import (
	"fmt"
	"html"
	"strings"
)

type ShellOptions struct {
	Title     string
	HeadHTML  string
	ReloadURL string
	PageID    string
}

// reloadScript listens on the preview event stream and reloads the page when
// the document changes.
const reloadScript = `<script>
(function () {
  var es = new EventSource(%q);
  es.addEventListener("reload", function () { window.location.reload(); });
})();
</script>`

// activateScript forwards clicks on addressed elements to the activation
// endpoint so the editor can select them.
const activateScript = `<script>
document.addEventListener("click", function (event) {
  var el = event.target.closest("[data-element-id]");
  if (!el) return;
  var link = event.target.closest("[data-href]");
  if (link) event.preventDefault();
  fetch("/api/activate/" + encodeURIComponent(el.getAttribute("data-element-id")), {method: "POST"})
    .then(function (res) { return res.ok ? res.json() : null; })
    .then(function (body) {
      if (!body) return;
      if (body.navigate) window.location.href = "/preview" + body.navigate;
      else if (body.rerendered) window.location.reload();
    });
});
</script>`

func RenderHTMLShell(bodyHTML string, opts ShellOptions) string {
	title := opts.Title
	if title == "" {
		title = "Studio preview"
	}
	if opts.HeadHTML != "" && strings.Contains(strings.ToLower(opts.HeadHTML), "<title") {
		title = ""
	}

	head := `<meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" />`
	if title != "" {
		head += fmt.Sprintf("<title>%s</title>", html.EscapeString(title))
	}
	head += opts.HeadHTML

	var scripts strings.Builder
	scripts.WriteString(activateScript)
	if opts.ReloadURL != "" {
		scripts.WriteString("\n")
		fmt.Fprintf(&scripts, reloadScript, opts.ReloadURL)
	}

	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    %s
  </head>
  <body>
    <div id="app" data-page-id="%s">%s</div>
    %s
  </body>
</html>
`, head, html.EscapeString(opts.PageID), bodyHTML, scripts.String())
}
