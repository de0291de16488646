package api

// indexPage is the single-page front end: it posts free text to the query
// API and renders the price table or a Plotly line chart from the JSON
// result.
const indexPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Stock Agent</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
body { font-family: sans-serif; max-width: 860px; margin: 2em auto; }
input[type=text] { width: 70%; padding: 8px; }
button { padding: 8px 16px; }
table { border-collapse: collapse; margin-top: 1em; }
td { padding: 8px; border-bottom: 1px solid #ddd; }
td:first-child { font-weight: bold; }
#error { color: #b00020; margin-top: 1em; }
#meta { color: #666; font-size: 0.85em; margin-top: 0.5em; }
</style>
</head>
<body>
<h2>Stock Agent</h2>
<p>Ask for a price or a chart, e.g. <em>What's the current price of Apple?</em>
or <em>Show me a chart for Tesla over the last 6 months</em>.</p>
<form id="form">
<input type="text" id="q" placeholder="Your question">
<button type="submit">Ask</button>
</form>
<div id="error"></div>
<div id="meta"></div>
<div id="price"></div>
<div id="chart" style="height:420px"></div>
<script>
const labels = {
  price: "Current Price",
  market_cap: "Market Cap",
  fifty_two_week_low: "52 Week Low",
  fifty_two_week_high: "52 Week High",
  pe_ratio: "P/E Ratio",
  dividend_yield: "Dividend Yield"
};

document.getElementById("form").addEventListener("submit", async (ev) => {
  ev.preventDefault();
  const q = document.getElementById("q").value.trim();
  if (!q) return;
  document.getElementById("error").textContent = "";
  document.getElementById("meta").textContent = "";
  document.getElementById("price").innerHTML = "";
  Plotly.purge("chart");

  const resp = await fetch("/api/v1/query", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({q})
  });
  const data = await resp.json();
  if (!data.ok) {
    document.getElementById("error").textContent = data.error || "request failed";
    return;
  }
  document.getElementById("meta").textContent =
    "routed as " + data.request.kind + " (" + data.mode + " classifier)";

  if (data.price) {
    let html = "<h3>" + (data.price.name || data.price.symbol) +
      " (" + data.price.symbol + ")</h3><table>";
    for (const [field, label] of Object.entries(labels)) {
      const v = data.price[field];
      html += "<tr><td>" + label + "</td><td>" +
        (v === null || v === undefined ? "n/a" : v) + "</td></tr>";
    }
    html += "</table>";
    document.getElementById("price").innerHTML = html;
  }

  if (data.chart) {
    const xs = data.chart.points.map(p => new Date(p.ts * 1000));
    const ys = data.chart.points.map(p => p.close);
    Plotly.newPlot("chart", [{x: xs, y: ys, mode: "lines", name: data.chart.symbol}], {
      title: data.chart.symbol + " (" + data.chart.range + ", " + data.chart.interval + ")",
      xaxis: {title: "Date"},
      yaxis: {title: "Price (USD)"}
    });
  }
});
</script>
</body>
</html>
`
