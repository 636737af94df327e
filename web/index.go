package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Musicbox</title>
<style>
  body { font-family: sans-serif; background: #111; color: #eee; max-width: 60em; margin: 2em auto; padding: 0 1em; }
  h1 { font-size: 1.4em; }
  table { border-collapse: collapse; width: 100%; margin: 1em 0; }
  th, td { text-align: left; padding: 0.4em 0.8em; border-bottom: 1px solid #333; }
  code { font-family: monospace; color: #8fd; }
  button { background: #265; color: #eee; border: none; padding: 0.4em 0.9em; cursor: pointer; }
  button:hover { background: #387; }
  textarea { width: 100%; height: 14em; background: #000; color: #eee; font-family: monospace; }
  #toast { color: #fa5; min-height: 1.2em; }
  dt { color: #999; }
  dd { margin: 0 0 0.5em 0; }
</style>
</head>
<body>
<h1>Musicbox</h1>
<p id="toast"></p>
<button onclick="pause()">Pause</button>
<h2>Status</h2>
<dl>
  <dt>Idle polls</dt><dd id="idle">0</dd>
  <dt>Last action</dt><dd id="action">&ndash;</dd>
  <dt>Last update</dt><dd id="update">&ndash;</dd>
  <dt>Playing</dt><dd id="playing">&ndash;</dd>
</dl>
<h2>Cards</h2>
<table><thead><tr><th>Card</th><th>Track</th><th></th></tr></thead><tbody id="cards"></tbody></table>
<h2>Config</h2>
<textarea id="config"></textarea><br>
<button onclick="saveConfig()">Save</button>
<button onclick="loadConfig()">Reload</button>
<script>
function toast(msg) {
  document.getElementById('toast').textContent = msg;
  setTimeout(() => { document.getElementById('toast').textContent = ''; }, 4000);
}
async function api(url, options) {
  const res = await fetch(url, options);
  const body = await res.json();
  if (!res.ok) throw new Error(body.error || res.statusText);
  return body;
}
function showStatus(s) {
  document.getElementById('idle').textContent = s.idle_events;
  document.getElementById('action').textContent = s.last_action || '–';
  document.getElementById('update').textContent = s.last_update || '–';
  document.getElementById('playing').textContent =
    s.active_card ? s.active_card + ' (' + s.active_track + ')' : '–';
}
async function refresh() {
  try {
    showStatus(await api('/api/status'));
    const lib = await api('/api/library');
    const rows = lib.entries.map(e =>
      '<tr><td><code>' + e.card + '</code></td><td>' + e.track +
      '</td><td><button onclick="play(\'' + e.card + '\')">Play</button></td></tr>');
    document.getElementById('cards').innerHTML = rows.join('');
  } catch (err) { toast(err.message); }
}
async function play(card) {
  try {
    const res = await api('/api/play', {method: 'POST', body: JSON.stringify({card_hex: card})});
    showStatus(res.status);
    toast(res.message);
  } catch (err) { toast(err.message); }
}
async function pause() {
  try {
    const res = await api('/api/pause', {method: 'POST'});
    showStatus(res.status);
    toast(res.message);
  } catch (err) { toast(err.message); }
}
async function loadConfig() {
  try {
    const cfg = await api('/api/config');
    document.getElementById('config').value = cfg.contents;
  } catch (err) { toast(err.message); }
}
async function saveConfig() {
  try {
    await api('/api/config', {method: 'PUT',
      body: JSON.stringify({contents: document.getElementById('config').value})});
    toast('Config saved');
    refresh();
  } catch (err) { toast(err.message); }
}
loadConfig();
refresh();
setInterval(refresh, 4000);
</script>
</body>
</html>
`
