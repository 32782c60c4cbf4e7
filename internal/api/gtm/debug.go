package gtm

import (
	"html/template"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/tracking"
)

const (
	allEventsLimit   = 20
	perEventLimit    = 10
	debugRefreshSecs = 10
)

type debugEvent struct {
	Timestamp string
	Name      string
	Class     string
	Data      string
}

type debugTab struct {
	ID     string
	Label  string
	Title  string
	Empty  string
	Events []debugEvent
}

type debugPage struct {
	ContainerID   string
	Auth          string
	Preview       string
	Config        tracking.Config
	Provisioned   bool
	RefreshSecs   int
	RefreshMillis int
	Tabs          []debugTab
}

var eventClass = map[string]string{
	tracking.EventPageView:   "page-view",
	tracking.EventViewItem:   "product-view",
	tracking.EventAddToCart:  "add-to-cart",
	tracking.EventUserLogout: "user-logout",
}

// ServeDebug renders the recent event history as an auto-refreshing page.
func (h *Handler) ServeDebug(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, gtmAuth, preview := q.Get("id"), q.Get("gtm_auth"), q.Get("gtm_preview")

	log.Info().Str("id", id).Str("gtm_auth", gtmAuth).Str("gtm_preview", preview).Msg("debug page accessed")

	cfg := h.tracker.Config()
	page := debugPage{
		ContainerID:   orDefault(id, cfg.ContainerID),
		Auth:          orDefault(gtmAuth, "Not provided"),
		Preview:       orDefault(preview, "Not active"),
		Config:        cfg,
		Provisioned:   h.tracker.Provisioned(),
		RefreshSecs:   debugRefreshSecs,
		RefreshMillis: debugRefreshSecs * 1000,
		Tabs: []debugTab{
			h.tab(debugTab{ID: "AllEvents", Label: "All Events", Title: "All Recent Events", Empty: "No events recorded yet"}, "", allEventsLimit),
			h.tab(debugTab{ID: "PageViews", Label: "Page Views", Title: "Page View Events", Empty: "No page view events recorded yet"}, tracking.EventPageView, perEventLimit),
			h.tab(debugTab{ID: "ProductViews", Label: "Product Views", Title: "Product View Events", Empty: "No product view events recorded yet"}, tracking.EventViewItem, perEventLimit),
			h.tab(debugTab{ID: "AddToCart", Label: "Add to Cart", Title: "Add to Cart Events", Empty: "No add to cart events recorded yet"}, tracking.EventAddToCart, perEventLimit),
			h.tab(debugTab{ID: "Logouts", Label: "User Logouts", Title: "User Logout Events", Empty: "No user logout events recorded yet"}, tracking.EventUserLogout, perEventLimit),
		},
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := debugTemplate.Execute(w, page); err != nil {
		log.Error().Err(err).Msg("render debug page")
	}
}

// tab fills t with up to limit records of eventType ("" for all).
func (h *Handler) tab(t debugTab, eventType string, limit int) debugTab {
	records := h.tracker.Recent(eventType, limit)
	events := make([]debugEvent, 0, len(records))
	for _, rec := range records {
		data, err := json.MarshalIndent(rec.Data.Fields(), "", "  ")
		if err != nil {
			data = []byte(err.Error())
		}
		events = append(events, debugEvent{
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
			Name:      rec.EventName,
			Class:     eventClass[rec.EventName],
			Data:      string(data),
		})
	}

	t.Events = events
	return t
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var debugTemplate = template.Must(template.New("debug").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSecs}}">
<title>Tracking Debug Interface</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; padding: 20px; }
h1, h2, h3 { color: #333; }
.container { max-width: 1000px; margin: 0 auto; }
.info { background: #f4f4f4; padding: 15px; border-radius: 5px; margin-bottom: 20px; }
.param { margin-bottom: 10px; }
.key { font-weight: bold; }
.event { background: #fff; padding: 10px; margin: 10px 0; border-left: 3px solid #ccc; border-radius: 3px; }
.event-time { color: #666; font-size: 0.9em; }
.event-name { font-weight: bold; color: #2c3e50; }
.event-data { margin-top: 5px; font-family: monospace; white-space: pre-wrap; font-size: 0.8em; max-height: 100px; overflow-y: auto; }
.page-view { border-left-color: #3498db; }
.product-view { border-left-color: #2ecc71; }
.add-to-cart { border-left-color: #e74c3c; }
.user-logout { border-left-color: #f39c12; }
.tab { overflow: hidden; border: 1px solid #ccc; background-color: #f1f1f1; }
.tab button { background-color: inherit; float: left; border: none; outline: none; cursor: pointer; padding: 14px 16px; }
.tab button.active { background-color: #ccc; }
.tabcontent { display: none; padding: 6px 12px; border: 1px solid #ccc; border-top: none; }
#AllEvents { display: block; }
</style>
<script>
function openEventTab(evt, tabName) {
  var i, tabs = document.getElementsByClassName("tabcontent"), links = document.getElementsByClassName("tablinks");
  for (i = 0; i < tabs.length; i++) { tabs[i].style.display = "none"; }
  for (i = 0; i < links.length; i++) { links[i].className = links[i].className.replace(" active", ""); }
  document.getElementById(tabName).style.display = "block";
  evt.currentTarget.className += " active";
}
setTimeout(function() { location.reload(); }, {{.RefreshMillis}});
</script>
</head>
<body>
<div class="container">
<h1>Tracking Debug Interface</h1>
<div class="info">
<div class="param"><span class="key">Container ID:</span> {{.ContainerID}}</div>
<div class="param"><span class="key">Auth:</span> {{.Auth}}</div>
<div class="param"><span class="key">Preview Mode:</span> {{.Preview}}</div>
</div>

<h2>Active Configuration</h2>
<div class="info">
<div class="param"><span class="key">Server URL:</span> {{.Config.CollectorURL}}</div>
<div class="param"><span class="key">Container ID:</span> {{.Config.ContainerID}}</div>
<div class="param"><span class="key">API Secret Set:</span> {{if .Config.APISecret}}Yes{{else}}No{{end}}</div>
<div class="param"><span class="key">Container Config Available:</span> {{if .Config.ProvisioningToken}}Yes{{else}}No{{end}}</div>
<div class="param"><span class="key">Provisioned:</span> {{if .Provisioned}}Yes{{else}}No{{end}}</div>
</div>

<h2>Recent Events</h2>
<div class="tab">
{{- range $i, $t := .Tabs}}
<button class="tablinks{{if eq $i 0}} active{{end}}" onclick="openEventTab(event, '{{$t.ID}}')">{{$t.Label}} ({{len $t.Events}})</button>
{{- end}}
</div>
{{range .Tabs}}
<div id="{{.ID}}" class="tabcontent">
<h3>{{.Title}}</h3>
{{- range .Events}}
<div class="event {{.Class}}">
<div class="event-time">{{.Timestamp}}</div>
<div class="event-name">{{.Name}}</div>
<div class="event-data">{{.Data}}</div>
</div>
{{- else}}
<p>{{.Empty}}</p>
{{- end}}
</div>
{{end}}
</div>
</body>
</html>
`))
