package http

const tmplBase = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>{{.Page.Title}}</title>
<script src="https://unpkg.com/deck.gl@8.9.35/dist.min.js"></script>
<script src="https://api.mapbox.com/mapbox-gl-js/v1.13.3/mapbox-gl.js"></script>
<link href="https://api.mapbox.com/mapbox-gl-js/v1.13.3/mapbox-gl.css" rel="stylesheet">
<script src="https://cdn.plot.ly/plotly-2.27.0.min.js"></script>
<style>
*{box-sizing:border-box}
body{font-family:"Source Sans Pro",sans-serif;color:#262730;margin:0;padding:24px 48px;max-width:1100px}
h1{font-size:30px;margin:0 0 8px}
h2{font-size:22px;margin:32px 0 8px}
h3{font-size:17px;margin:24px 0 8px}
form{display:flex;flex-direction:column;gap:10px;background:#f0f2f6;padding:16px;border-radius:6px}
label{font-size:14px}
.map{position:relative;height:480px;border:1px solid #e6e9ef;border-radius:4px}
.dim{color:#808495;font-size:13px}
.empty{padding:24px;background:#fff8e6;border-radius:4px}
table{border-collapse:collapse;font-size:13px;width:100%}
th{text-align:left;padding:4px 8px;border-bottom:1px solid #d6d6d9}
td{padding:4px 8px;border-bottom:1px solid #f0f2f6}
td.num{text-align:right}
.scroll{overflow-x:auto;max-height:480px}
</style>
</head>
<body>
{{template "content" .}}
</body>
</html>{{end}}
`

const tmplDashboard = `
{{define "content"}}{{$p := .Page}}
<h1>{{$p.Title}}</h1>
<p>This application is a dashboard that can be used to analyze motor vehicle collisions in NYC.</p>

<form method="get" action="/">
  <label>Number of persons injured in vehicle collisions: <strong>{{$p.Controls.InjuredPersons}}</strong><br>
    <input type="range" name="injured" min="0" max="{{.MaxInjured}}" value="{{$p.Controls.InjuredPersons}}" onchange="this.form.submit()">
  </label>
  <label>Hour to look at: <strong>{{$p.Controls.Hour}}</strong><br>
    <input type="range" name="hour" min="0" max="{{.LastHour}}" value="{{$p.Controls.Hour}}" onchange="this.form.submit()">
  </label>
  <label>Affected type of people
    <select name="type" onchange="this.form.submit()">
    {{range .Categories}}<option value="{{.}}"{{if eq . $p.Controls.Category}} selected{{end}}>{{.Label}}</option>
    {{end}}</select>
  </label>
  <label><input type="checkbox" name="raw" value="true"{{if $p.Controls.ShowRaw}} checked{{end}} onchange="this.form.submit()"> Show Raw Data</label>
</form>

<h2>Where are the most injured people in NYC?</h2>
<p class="dim">{{thousands $p.Injuries.Count}} collisions with at least {{$p.Injuries.MinInjured}} injured {{plural $p.Injuries.MinInjured "person" "persons"}}</p>
{{if $p.Injuries.Center}}<div id="injury-map" class="map"></div>{{else}}<div class="empty">No data for this selection</div>{{end}}

<h2>How many collisions occur during a given time of day?</h2>
<p>Looking for the data between {{$p.Hour.From}} and {{$p.Hour.To}}</p>
{{if $p.Hour.Empty}}<div class="empty">No data for this selection</div>
{{else}}<p class="dim">{{thousands $p.Hour.Count}} collisions{{with $p.Hour.CenterLabel}}, centred on {{.}}{{end}}</p>
<div id="hour-map" class="map"></div>{{end}}

<h3>{{breakdown $p.Hour.Hour}}</h3>
<div id="minutes"></div>
<p class="dim"><a href="/chart/minutes.png?hour={{$p.Hour.Hour}}">Download as PNG</a></p>

<h2>Top 5 dangerous streets by affected type</h2>
<table>
<tr><th>on_street_name</th><th>{{$p.Streets.Column}}</th></tr>
{{range $p.Streets.Rows}}<tr><td>{{.Street}}</td><td class="num">{{thousands .Count}}</td></tr>
{{else}}<tr><td colspan="2" class="dim">No data for this selection</td></tr>
{{end}}</table>

{{with $p.Raw}}
<h3>Raw Data</h3>
{{if .Truncated}}<p class="dim">Showing {{thousands (len .Rows)}} of {{thousands .Total}} rows</p>{{end}}
<div class="scroll"><table>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table></div>
{{end}}

<p class="dim">{{thousands $p.Stats.RowsKept}} of {{thousands $p.Stats.RowsRead}} rows loaded, {{thousands $p.Stats.MissingCoordinates}} without coordinates</p>

<script>
const page = {{$p}};
const token = {{.MapboxToken}};
if (token) { mapboxgl.accessToken = token; }

if (page.injuries.center) {
  new deck.DeckGL({
    container: "injury-map",
    mapStyle: token ? "mapbox://styles/mapbox/light-v9" : null,
    initialViewState: {latitude: page.injuries.center.latitude, longitude: page.injuries.center.longitude, zoom: 10},
    controller: true,
    layers: [new deck.ScatterplotLayer({
      id: "injured",
      data: page.injuries.points,
      getPosition: d => [d.longitude, d.latitude],
      getFillColor: [200, 30, 0, 160],
      getRadius: 30,
      radiusMinPixels: 2
    })]
  });
}

if (page.hour.layer) {
  const l = page.hour.layer;
  new deck.DeckGL({
    container: "hour-map",
    mapStyle: token ? l.map_style : null,
    initialViewState: {latitude: page.hour.center.latitude, longitude: page.hour.center.longitude, zoom: l.zoom, pitch: l.pitch},
    controller: true,
    layers: [new deck.HexagonLayer({
      id: "density",
      data: page.hour.points,
      getPosition: d => [d.longitude, d.latitude],
      radius: l.radius,
      extruded: l.extruded,
      pickable: l.pickable,
      elevationScale: l.elevation_scale,
      elevationRange: l.elevation_range
    })]
  });
}

Plotly.newPlot("minutes", [{
  type: "bar",
  x: page.minutes.map(b => b.minute),
  y: page.minutes.map(b => b.crashes),
  hovertemplate: "minute %{x}: %{y} crashes"
}], {height: 400, margin: {t: 10}, xaxis: {title: "minute"}, yaxis: {title: "crashes"}});
</script>
{{end}}
`
