package watch

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>djdep watch</title>
<style>
  body { font-family: ui-monospace, Menlo, Consolas, monospace; margin: 2rem; }
  #status { color: #666; font-size: 0.9rem; }
  pre { background: #f6f8fa; padding: 1rem; border-radius: 6px; overflow: auto; }
</style>
</head>
<body>
<h1>djdep watch</h1>
<div id="status">connecting...</div>
<pre id="graph"></pre>
<script>
  const status = document.getElementById("status");
  const graph = document.getElementById("graph");
  const source = new EventSource("/events");
  source.addEventListener("graph", (event) => {
    graph.textContent = event.data;
    status.textContent = "updated " + new Date().toLocaleTimeString();
  });
  source.onerror = () => { status.textContent = "disconnected, retrying..."; };
</script>
</body>
</html>
`
