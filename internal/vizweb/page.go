package vizweb

const indexHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>gridpath</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; }
canvas { border: 1px solid #444; }
button { margin-right: 4px; }
</style>
</head>
<body>
<div>
  <button id="init">new world</button>
  <button id="next">expand</button>
  <button id="run">search</button>
  <button id="replay">replay</button>
  <span id="status"></span>
</div>
<canvas id="grid" width="800" height="480"></canvas>
<script>
const size = 20;
const canvas = document.getElementById("grid");
const ctx = canvas.getContext("2d");
const status = document.getElementById("status");
let last = null;

function fill(cells, color) {
  ctx.fillStyle = color;
  for (const [x, y] of cells || []) ctx.fillRect(x * size, y * size, size - 1, size - 1);
}

function draw(s) {
  last = s;
  canvas.width = s.w * size;
  canvas.height = s.h * size;
  ctx.fillStyle = "#222";
  ctx.fillRect(0, 0, canvas.width, canvas.height);
  fill(s.closed, "#345");
  fill(s.open, "#4a7");
  fill(s.walls, "#999");
  fill(s.path, "#dc4");
  fill([s.start, s.goal], "#e55");
  status.textContent = "step " + s.step + (s.done ? (s.found ? " found" : " no path") : "");
}

async function next() {
  const res = await fetch("/next");
  if (!res.ok) { status.textContent = await res.text(); return null; }
  const s = await res.json();
  draw(s);
  return s;
}

document.getElementById("init").onclick = async () => {
  await fetch("/init");
  await next();
};
document.getElementById("next").onclick = next;
document.getElementById("run").onclick = async () => {
  let s = await next();
  while (s && !s.done) s = await next();
};
document.getElementById("replay").onclick = () => {
  const ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type === "step" && last) {
      fill([[msg.current.x, msg.current.y]], "#f0f");
      status.textContent = "tick " + msg.tick;
    } else if (msg.type === "trajectory") {
      status.textContent = "replayed " + msg.trajectory.path.length + " steps";
    }
  };
};
</script>
</body>
</html>
`
